package capture

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/copydock/internal/domain"
	"github.com/MrSnakeDoc/copydock/internal/logger"
	"github.com/MrSnakeDoc/copydock/internal/store"
	"github.com/MrSnakeDoc/copydock/internal/store/memory"
)

func TestListSeedsDefaultOnce(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	dir := NewDirectory(st, logger.Nop())

	for i := 0; i < 2; i++ {
		notebooks, degraded := dir.List(ctx)
		if degraded {
			t.Fatal("List() should not degrade on a healthy store")
		}
		if len(notebooks) != 1 || notebooks[0].ID != domain.DefaultNotebookID {
			t.Fatalf("List() call %d = %+v, want only the default notebook", i+1, notebooks)
		}
		if notebooks[0].Name != domain.DefaultNotebookName || notebooks[0].Description != domain.DefaultNotebookDescription {
			t.Errorf("default notebook = %+v", notebooks[0])
		}
	}
}

func TestListConcurrentFirstCalls(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	dir := NewDirectory(st, logger.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dir.List(ctx)
		}()
	}
	wg.Wait()

	notebooks, _ := st.Notebooks(ctx)
	if len(notebooks) != 1 {
		t.Errorf("concurrent List() created %d notebooks, want 1", len(notebooks))
	}
}

func TestEnsureDefaultIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(memory.New(), logger.Nop())

	created, err := dir.EnsureDefault(ctx)
	if err != nil || !created {
		t.Fatalf("EnsureDefault() = %v, %v; want true, nil", created, err)
	}
	created, err = dir.EnsureDefault(ctx)
	if err != nil || created {
		t.Fatalf("second EnsureDefault() = %v, %v; want false, nil", created, err)
	}
}

func TestEnsureDefaultSkipsNonEmptyStore(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	dir := NewDirectory(st, logger.Nop())

	if _, err := dir.Create(ctx, "work", "Work", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created, _ := dir.EnsureDefault(ctx); created {
		t.Error("EnsureDefault() should not add a default next to existing notebooks")
	}
}

func TestListDegradesOnStorageFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	st := &flakyStore{Store: memory.New(), failNotebooks: true}
	dir := NewDirectory(st, logger.Wrap(zap.New(core)))

	notebooks, degraded := dir.List(context.Background())
	if !degraded {
		t.Error("List() should report degraded")
	}
	if len(notebooks) != 1 || notebooks[0].ID != domain.DefaultNotebookID {
		t.Errorf("List() = %+v, want in-memory default", notebooks)
	}
	if logs.Len() == 0 {
		t.Error("degraded listing should be logged")
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	dir := NewDirectory(st, logger.Nop(), WithIDGenerator(func() string { return "generated" }))

	nb, err := dir.Create(ctx, "", "  Reading List ", "books")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if nb.ID != "generated" || nb.Name != "Reading List" || nb.Description != "books" {
		t.Errorf("Create() = %+v", nb)
	}

	_, err = dir.Create(ctx, "generated", "Again", "")
	if !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("Create() duplicate error = %v, want ErrDuplicate", err)
	}

	_, err = dir.Create(ctx, "x", " ", "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Create() without name error = %v, want *ValidationError", err)
	}
}

func TestSetTargetMerges(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	dir := NewDirectory(st, logger.Nop())

	if _, err := st.UpdateSettings(ctx, map[string]string{"theme": "dark"}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}

	target, err := dir.SetTarget(ctx, "work", "Work")
	if err != nil {
		t.Fatalf("SetTarget() error = %v", err)
	}
	if target.NotebookID != "work" || target.NotebookName != "Work" {
		t.Errorf("SetTarget() = %+v", target)
	}

	settings, _ := st.Settings(ctx)
	if settings["theme"] != "dark" {
		t.Errorf("SetTarget() dropped unrelated key: %v", settings)
	}

	got, err := dir.Target(ctx)
	if err != nil {
		t.Fatalf("Target() error = %v", err)
	}
	if got.NotebookID != "work" || got.NotebookName != "Work" {
		t.Errorf("Target() = %+v", got)
	}
}

func TestSetTargetValidation(t *testing.T) {
	dir := NewDirectory(memory.New(), logger.Nop())

	tests := []struct {
		name, id, nbName string
		wantFields       int
	}{
		{"missing id", "", "Work", 1},
		{"missing name", "work", "", 1},
		{"missing both", " ", " ", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dir.SetTarget(context.Background(), tt.id, tt.nbName)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("SetTarget() error = %v, want *ValidationError", err)
			}
			if len(verr.Fields) != tt.wantFields {
				t.Errorf("Fields = %v, want %d entries", verr.Fields, tt.wantFields)
			}
		})
	}
}

func TestTargetDefaults(t *testing.T) {
	got, err := NewDirectory(memory.New(), logger.Nop()).Target(context.Background())
	if err != nil {
		t.Fatalf("Target() error = %v", err)
	}
	if got.NotebookID != domain.DefaultNotebookID || got.NotebookName != domain.DefaultNotebookName {
		t.Errorf("Target() = %+v, want defaults", got)
	}

	failing := NewDirectory(&flakyStore{Store: memory.New(), failSettings: true}, logger.Nop())
	got, err = failing.Target(context.Background())
	if !errors.Is(err, errBoom) {
		t.Errorf("Target() error = %v, want errBoom", err)
	}
	if got.NotebookID != domain.DefaultNotebookID {
		t.Errorf("Target() on failure = %+v, want defaults", got)
	}
}
