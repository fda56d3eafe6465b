package capture

import (
	"time"

	"github.com/google/uuid"
)

// Option tweaks a Service or a Directory, mostly for tests.
type Option func(*env)

type env struct {
	now   func() time.Time
	newID func() string
}

func newEnv(opts []Option) env {
	e := env{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *env) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator replaces uuid.NewString.
func WithIDGenerator(newID func() string) Option {
	return func(e *env) {
		if newID != nil {
			e.newID = newID
		}
	}
}
