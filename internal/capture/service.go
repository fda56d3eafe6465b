// Package capture files browser captures into notebooks.
//
// Both capture endpoints normalize their payload into an Input and call
// Service.Ingest; the Directory manages notebooks and the routing target.
package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/copydock/internal/domain"
	"github.com/MrSnakeDoc/copydock/internal/logger"
	"github.com/MrSnakeDoc/copydock/internal/store"
)

const (
	MessageCaptured = "Content captured successfully"
	MessageFailed   = "Failed to capture content"
)

// Result is the outcome of one ingestion. Failures are values, not panics.
type Result struct {
	Success      bool
	Capture      domain.WebCapture // zero when validation failed
	NotebookID   string
	NotebookName string
	Message      string
	Err          error
}

// IsValidation reports whether the capture was rejected before storage.
func (r Result) IsValidation() bool {
	var verr *ValidationError
	return errors.As(r.Err, &verr)
}

// Service runs the ingestion pipeline.
type Service struct {
	store store.Store
	dir   *Directory
	log   logger.Logger
	env
}

// NewService wires the pipeline to its store and notebook directory.
func NewService(st store.Store, dir *Directory, log logger.Logger, opts ...Option) *Service {
	return &Service{
		store: st,
		dir:   dir,
		log:   log,
		env:   newEnv(opts),
	}
}

// Ingest validates, routes and persists one capture.
func (s *Service) Ingest(ctx context.Context, in Input) Result {
	log := s.log.With(
		logger.String("op", "ingest_capture"),
		logger.String("source_domain", in.SourceDomain),
	)

	if err := in.Validate(); err != nil {
		log.Warn("capture rejected", logger.Error(err))
		return Result{Message: "Error: " + err.Error(), Err: err}
	}

	settings, err := s.store.Settings(ctx)
	if err != nil {
		// Routing still works on defaults
		log.Warn("settings unavailable, routing with defaults", logger.Error(err))
		settings = nil
	}
	target := domain.ResolveTarget(in.TargetNotebookID, settings)

	now := s.now().UTC()
	ts := in.Timestamp
	if strings.TrimSpace(ts) == "" {
		ts = now.Format(time.RFC3339)
	}

	rec := domain.WebCapture{
		ID:               s.newID(),
		SelectedText:     in.SelectedText,
		SelectedHTML:     in.SelectedHTML,
		SourceDomain:     in.SourceDomain,
		SourceURL:        in.SourceURL,
		TargetNotebookID: target.NotebookID,
		Timestamp:        ts,
		CreatedAt:        now,
	}
	log = log.With(
		logger.String("capture_id", rec.ID),
		logger.String("notebook_id", rec.TargetNotebookID),
	)

	if err := s.store.AddWebCapture(ctx, rec); err != nil {
		err = fmt.Errorf("failed to save capture: %w", err)
		log.Error("capture not saved", logger.Error(err))
		return Result{Capture: rec, Message: "Error: " + err.Error(), Err: err}
	}

	name := s.dir.NameOf(ctx, rec.TargetNotebookID)
	log.Info("capture saved", logger.Bool("explicit_target", target.Explicit))

	return Result{
		Success:      true,
		Capture:      rec,
		NotebookID:   rec.TargetNotebookID,
		NotebookName: name,
		Message:      MessageCaptured,
	}
}
