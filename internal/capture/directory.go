package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/copydock/internal/domain"
	"github.com/MrSnakeDoc/copydock/internal/logger"
	"github.com/MrSnakeDoc/copydock/internal/store"
)

// Directory owns the notebook collection and the target notebook setting.
type Directory struct {
	store store.Store
	log   logger.Logger
	env
}

// NewDirectory creates a Directory on top of st.
func NewDirectory(st store.Store, log logger.Logger, opts ...Option) *Directory {
	return &Directory{
		store: st,
		log:   log,
		env:   newEnv(opts),
	}
}

// EnsureDefault persists the default notebook if no notebook exists.
// Safe to call any number of times, concurrently.
func (d *Directory) EnsureDefault(ctx context.Context) (bool, error) {
	created, err := d.store.EnsureNotebook(ctx, domain.DefaultNotebook(d.now()))
	if err != nil {
		return false, fmt.Errorf("ensure default notebook: %w", err)
	}
	if created {
		d.log.Info("default notebook created",
			logger.String("notebook_id", domain.DefaultNotebookID))
	}
	return created, nil
}

// List returns every notebook in insertion order.
// When storage fails it returns the default notebook and degraded=true.
func (d *Directory) List(ctx context.Context) (notebooks []domain.Notebook, degraded bool) {
	notebooks, err := d.store.Notebooks(ctx)
	if err == nil && len(notebooks) == 0 {
		// Storage was wiped or EnsureDefault never ran
		if _, err = d.EnsureDefault(ctx); err == nil {
			notebooks, err = d.store.Notebooks(ctx)
		}
	}
	if err != nil {
		d.log.Error("failed to list notebooks, serving default",
			logger.String("op", "list_notebooks"),
			logger.Error(err))
		return []domain.Notebook{domain.DefaultNotebook(d.now())}, true
	}
	return notebooks, false
}

// Create appends a notebook. An empty id gets a generated one.
// Returns store.ErrDuplicate when the id is taken.
func (d *Directory) Create(ctx context.Context, id, name, description string) (domain.Notebook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Notebook{}, &ValidationError{Fields: []string{"name"}}
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = d.newID()
	}

	nb := domain.Notebook{
		ID:          id,
		Name:        name,
		CreatedAt:   d.now().UTC(),
		Description: strings.TrimSpace(description),
	}
	if err := d.store.AddNotebook(ctx, nb); err != nil {
		return domain.Notebook{}, fmt.Errorf("create notebook: %w", err)
	}

	d.log.Info("notebook created",
		logger.String("notebook_id", nb.ID),
		logger.String("notebook_name", nb.Name))
	return nb, nil
}

// SetTarget stores id and name as the default destination for captures.
// Both are required; nothing checks that the notebook exists.
func (d *Directory) SetTarget(ctx context.Context, id, name string) (domain.Target, error) {
	id, name = strings.TrimSpace(id), strings.TrimSpace(name)

	var missing []string
	if id == "" {
		missing = append(missing, "notebookId")
	}
	if name == "" {
		missing = append(missing, "notebookName")
	}
	if len(missing) > 0 {
		return domain.Target{}, &ValidationError{Fields: missing}
	}

	merged, err := d.store.UpdateSettings(ctx, map[string]string{
		domain.SettingTargetNotebookID:   id,
		domain.SettingTargetNotebookName: name,
	})
	if err != nil {
		return domain.Target{}, fmt.Errorf("update target notebook: %w", err)
	}

	d.log.Info("target notebook updated",
		logger.String("notebook_id", id),
		logger.String("notebook_name", name))
	return domain.Target{
		NotebookID:   merged.TargetNotebookID(),
		NotebookName: merged.TargetNotebookName(),
	}, nil
}

// Target returns the configured destination. On storage failure the
// defaults come back together with the error.
func (d *Directory) Target(ctx context.Context) (domain.Target, error) {
	settings, err := d.store.Settings(ctx)
	if err != nil {
		settings = nil
		err = fmt.Errorf("read settings: %w", err)
	}
	return domain.ResolveTarget("", settings), err
}

// NameOf looks up the display name of notebook id.
// Read failures only narrow the fallback chain, they never fail the lookup.
func (d *Directory) NameOf(ctx context.Context, id string) string {
	notebooks, err := d.store.Notebooks(ctx)
	if err != nil {
		d.log.Warn("notebook lookup failed",
			logger.String("notebook_id", id),
			logger.Error(err))
		notebooks = nil
	}
	settings, err := d.store.Settings(ctx)
	if err != nil {
		d.log.Warn("settings lookup failed",
			logger.String("notebook_id", id),
			logger.Error(err))
		settings = nil
	}
	return domain.NotebookName(id, notebooks, settings)
}
