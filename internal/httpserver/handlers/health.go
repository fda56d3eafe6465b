package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/copydock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/copydock/internal/logger"
)

type healthResponse struct {
	Status        string  `json:"status"`
	Message       string  `json:"message"`
	Storage       string  `json:"storage"`
	Version       string  `json:"version"`
	Captures      *int    `json:"captures,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

// Health always answers 200 while the process is up; the capture count is
// left out when the store cannot provide it.
func Health(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:        "ok",
			Message:       "Backend is running",
			Storage:       d.Store.Kind(),
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
			UptimeSeconds: d.Now().Sub(start).Seconds(),
		}

		if n, err := d.Store.CountWebCaptures(r.Context()); err == nil {
			resp.Captures = &n
		} else {
			d.Logger.Warn("health: capture count unavailable", logger.Error(err))
		}

		writeJSON(w, d, http.StatusOK, resp)
	}
}

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz reports whether the store answers a ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	timeout := d.ReadyTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := d.Store.Ping(ctx); err != nil {
			d.Logger.Warn("readyz: store ping failed", logger.Error(err))
			writeJSON(w, d, http.StatusServiceUnavailable, readyzResponse{Ready: false, Error: err.Error()})
			return
		}
		writeJSON(w, d, http.StatusOK, readyzResponse{Ready: true})
	}
}
