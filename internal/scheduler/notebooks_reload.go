package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/copydock/internal/logger"
	"github.com/MrSnakeDoc/copydock/internal/sources/notebooks"
)

// NotebooksReloader applies the notebooks file at startup and, when an
// interval is set, again on every tick. Entries already present are left
// untouched, so edits to the file only ever add notebooks.
type NotebooksReloader struct {
	loader   *notebooks.Loader
	dir      notebooks.Creator
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	done     chan struct{}
}

// NewNotebooksReloader creates a reloader for file. interval <= 0 disables
// the periodic pass.
func NewNotebooksReloader(
	file string,
	dir notebooks.Creator,
	log logger.Logger,
	interval time.Duration,
) *NotebooksReloader {
	return &NotebooksReloader{
		loader:   notebooks.NewLoader(file),
		dir:      dir,
		logger:   log.With(logger.String("file", file)),
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start applies the file once and starts the periodic pass.
// A broken file at startup is fatal; later failures are only logged.
func (nr *NotebooksReloader) Start(ctx context.Context) error {
	if _, err := nr.Reload(ctx); err != nil {
		close(nr.done)
		return fmt.Errorf("initial notebooks load failed: %w", err)
	}

	if nr.interval <= 0 {
		close(nr.done)
		return nil
	}

	ticker := time.NewTicker(nr.interval)
	go func() {
		defer close(nr.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := nr.Reload(ctx); err != nil {
					nr.logger.Error("failed to reload notebooks", logger.Error(err))
				}
			case <-nr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop ends the periodic pass and waits for an in-flight reload.
func (nr *NotebooksReloader) Stop() {
	select {
	case <-nr.stopCh:
	default:
		close(nr.stopCh)
	}
	<-nr.done
}

// Reload reads the file and creates the notebooks it does not know yet.
func (nr *NotebooksReloader) Reload(ctx context.Context) (int, error) {
	entries, err := nr.loader.Load()
	if err != nil {
		return 0, err
	}

	created, err := notebooks.Apply(ctx, nr.dir, entries, nr.logger)
	if err != nil {
		return created, err
	}

	if created > 0 {
		nr.logger.Info("notebooks file applied",
			logger.Int("entries", len(entries)),
			logger.Int("created", created))
	} else {
		nr.logger.Debug("notebooks file unchanged", logger.Int("entries", len(entries)))
	}
	return created, nil
}
