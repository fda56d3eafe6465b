package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/copydock/internal/domain"
	"github.com/MrSnakeDoc/copydock/internal/store"
	"github.com/MrSnakeDoc/copydock/internal/store/storetest"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s := openTestStore(t, filepath.Join(t.TempDir(), "copydock.db"))
		t.Cleanup(func() {
			if err := s.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
		return s
	})
}

func TestRecordsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "copydock.db")

	s := openTestStore(t, path)
	capture := storetest.Capture("persisted")
	check := domain.StatusCheck{ID: uuid.NewString(), ClientName: "alice", Timestamp: time.Now().UTC()}
	nb := domain.Notebook{ID: "research", Name: "Research", CreatedAt: time.Now().UTC()}

	if err := s.AddWebCapture(ctx, capture); err != nil {
		t.Fatalf("AddWebCapture() error = %v", err)
	}
	if err := s.AddStatusCheck(ctx, check); err != nil {
		t.Fatalf("AddStatusCheck() error = %v", err)
	}
	if err := s.AddNotebook(ctx, nb); err != nil {
		t.Fatalf("AddNotebook() error = %v", err)
	}
	if _, err := s.UpdateSettings(ctx, map[string]string{domain.SettingTargetNotebookID: "research"}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := openTestStore(t, path)
	defer func() {
		if err := reopened.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	captures, err := reopened.WebCaptures(ctx, 0)
	if err != nil {
		t.Fatalf("WebCaptures() error = %v", err)
	}
	if len(captures) != 1 || captures[0].ID != capture.ID {
		t.Errorf("WebCaptures() after reopen = %+v", captures)
	}

	checks, err := reopened.StatusChecks(ctx)
	if err != nil {
		t.Fatalf("StatusChecks() error = %v", err)
	}
	if len(checks) != 1 || checks[0].ClientName != "alice" {
		t.Errorf("StatusChecks() after reopen = %+v", checks)
	}
	if !checks[0].Timestamp.Equal(check.Timestamp) {
		t.Errorf("timestamp = %v, want %v", checks[0].Timestamp, check.Timestamp)
	}

	notebooks, err := reopened.Notebooks(ctx)
	if err != nil {
		t.Fatalf("Notebooks() error = %v", err)
	}
	if len(notebooks) != 1 || notebooks[0].ID != "research" {
		t.Errorf("Notebooks() after reopen = %+v", notebooks)
	}

	settings, err := reopened.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if settings.TargetNotebookID() != "research" {
		t.Errorf("Settings() after reopen = %v", settings)
	}
}

func TestOpenIsLockedForSecondOpener(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copydock.db")
	s := openTestStore(t, path)

	_, err := Open(context.Background(), path)
	if !errors.Is(err, store.ErrLocked) {
		t.Fatalf("second Open() error = %v, want ErrLocked", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	again := openTestStore(t, path)
	if err := again.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Error("Open(\"\") should fail")
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "copydock.db"))
	defer func() { _ = s.Close() }()

	if err := s.migrate(ctx); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}

	var applied int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	if applied != len(migrations) {
		t.Errorf("schema_migrations has %d rows, want %d", applied, len(migrations))
	}
}

func TestEmptyTargetNotebookRejected(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "copydock.db"))
	defer func() { _ = s.Close() }()

	c := storetest.Capture("no target")
	c.TargetNotebookID = ""
	if err := s.AddWebCapture(context.Background(), c); err == nil {
		t.Error("AddWebCapture() with empty target notebook should fail")
	}
}
