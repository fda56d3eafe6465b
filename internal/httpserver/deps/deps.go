package deps

import (
	"time"

	"github.com/MrSnakeDoc/copydock/internal/capture"
	"github.com/MrSnakeDoc/copydock/internal/logger"
	"github.com/MrSnakeDoc/copydock/internal/store"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time   // for testing, defaults to time.Now
	Store        store.Store        // record store (sqlite, redis or memory)
	Captures     *capture.Service   // capture ingestion pipeline
	Notebooks    *capture.Directory // notebooks and the target notebook setting
	CaptureLimit int                // default ?limit for GET /web-captures
	MaxBodyBytes int64              // request body cap, 0 = unlimited
	ReadyTimeout time.Duration      // store ping deadline for /readyz
}

// Now returns TimeNow() or time.Now() when unset.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
