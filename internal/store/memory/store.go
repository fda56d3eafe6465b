// Package memory is a volatile store.Store used by tests and by
// "memory://" deployments. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/copydock/internal/domain"
	"github.com/MrSnakeDoc/copydock/internal/store"
)

// Store keeps every collection in process memory behind one lock.
type Store struct {
	mu            sync.RWMutex
	statusChecks  []domain.StatusCheck
	webCaptures   []domain.WebCapture
	notebooks     []domain.Notebook
	notebookIndex map[string]struct{} // notebook ID set
	settings      domain.Settings
}

var _ store.Store = (*Store)(nil)

// New creates an empty memory store.
func New() *Store {
	return &Store{
		statusChecks:  []domain.StatusCheck{},
		webCaptures:   []domain.WebCapture{},
		notebooks:     []domain.Notebook{},
		notebookIndex: make(map[string]struct{}),
		settings:      domain.Settings{},
	}
}

func (s *Store) Kind() string { return "memory" }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// ─────────────────────────────────────────────────────────────────
// Status checks
// ─────────────────────────────────────────────────────────────────

func (s *Store) AddStatusCheck(_ context.Context, rec domain.StatusCheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statusChecks = append(s.statusChecks, rec)
	return nil
}

func (s *Store) StatusChecks(context.Context) ([]domain.StatusCheck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.StatusCheck, len(s.statusChecks))
	copy(out, s.statusChecks)
	return out, nil
}

// ─────────────────────────────────────────────────────────────────
// Web captures
// ─────────────────────────────────────────────────────────────────

func (s *Store) AddWebCapture(_ context.Context, rec domain.WebCapture) error {
	if rec.TargetNotebookID == "" {
		return fmt.Errorf("web capture %s has no target notebook", rec.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.webCaptures = append(s.webCaptures, rec)
	return nil
}

func (s *Store) WebCaptures(_ context.Context, limit int) ([]domain.WebCapture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.webCaptures)
	if limit > 0 && limit < n {
		n = limit
	}

	// Newest first
	out := make([]domain.WebCapture, 0, n)
	for i := len(s.webCaptures) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.webCaptures[i])
	}
	return out, nil
}

func (s *Store) CountWebCaptures(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.webCaptures), nil
}

// ─────────────────────────────────────────────────────────────────
// Notebooks
// ─────────────────────────────────────────────────────────────────

func (s *Store) AddNotebook(_ context.Context, rec domain.Notebook) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notebookIndex[rec.ID]; exists {
		return fmt.Errorf("notebook %s: %w", rec.ID, store.ErrDuplicate)
	}
	s.appendNotebookLocked(rec)
	return nil
}

func (s *Store) EnsureNotebook(_ context.Context, rec domain.Notebook) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.notebooks) > 0 {
		return false, nil
	}
	s.appendNotebookLocked(rec)
	return true, nil
}

func (s *Store) appendNotebookLocked(rec domain.Notebook) {
	s.notebooks = append(s.notebooks, rec)
	s.notebookIndex[rec.ID] = struct{}{}
}

func (s *Store) Notebooks(context.Context) ([]domain.Notebook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Notebook, len(s.notebooks))
	copy(out, s.notebooks)
	return out, nil
}

// ─────────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────────

func (s *Store) Settings(context.Context) (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings.Clone(), nil
}

func (s *Store) UpdateSettings(_ context.Context, patch map[string]string) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = s.settings.Merge(patch)
	return s.settings.Clone(), nil
}
