package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/copydock/internal/domain"
	"github.com/MrSnakeDoc/copydock/internal/logger"
	"github.com/MrSnakeDoc/copydock/internal/store"
	"github.com/MrSnakeDoc/copydock/internal/store/memory"
)

var errBoom = errors.New("disk on fire")

// flakyStore fails selected operations on top of a memory store.
type flakyStore struct {
	*memory.Store
	failCapture   bool
	failNotebooks bool
	failSettings  bool
}

func (f *flakyStore) AddWebCapture(ctx context.Context, rec domain.WebCapture) error {
	if f.failCapture {
		return errBoom
	}
	return f.Store.AddWebCapture(ctx, rec)
}

func (f *flakyStore) Notebooks(ctx context.Context) ([]domain.Notebook, error) {
	if f.failNotebooks {
		return nil, errBoom
	}
	return f.Store.Notebooks(ctx)
}

func (f *flakyStore) EnsureNotebook(ctx context.Context, rec domain.Notebook) (bool, error) {
	if f.failNotebooks {
		return false, errBoom
	}
	return f.Store.EnsureNotebook(ctx, rec)
}

func (f *flakyStore) Settings(ctx context.Context) (domain.Settings, error) {
	if f.failSettings {
		return nil, errBoom
	}
	return f.Store.Settings(ctx)
}

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func newTestService(st store.Store, log logger.Logger) (*Service, *Directory) {
	opts := []Option{WithClock(func() time.Time { return fixedNow })}
	dir := NewDirectory(st, log, opts...)
	return NewService(st, dir, log, opts...), dir
}

func validInput() Input {
	return Input{
		SelectedText: "hello",
		SelectedHTML: "<b>hello</b>",
		SourceDomain: "example.com",
		SourceURL:    "https://example.com/a",
		Timestamp:    "2025-01-01T00:00:00Z",
	}
}

func TestIngestRouting(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]string
		explicit string
		wantID   string
	}{
		{"defaults", nil, "", "default"},
		{"settings target", map[string]string{domain.SettingTargetNotebookID: "inbox"}, "", "inbox"},
		{"explicit wins", map[string]string{domain.SettingTargetNotebookID: "inbox"}, "research", "research"},
		{"explicit kept verbatim", nil, "Research-2", "Research-2"},
		{"blank explicit ignored", map[string]string{domain.SettingTargetNotebookID: "inbox"}, "   ", "inbox"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := memory.New()
			if tt.settings != nil {
				if _, err := st.UpdateSettings(ctx, tt.settings); err != nil {
					t.Fatalf("UpdateSettings() error = %v", err)
				}
			}
			svc, _ := newTestService(st, logger.Nop())

			in := validInput()
			in.TargetNotebookID = tt.explicit
			res := svc.Ingest(ctx, in)
			if !res.Success {
				t.Fatalf("Ingest() failed: %v", res.Err)
			}
			if res.NotebookID != tt.wantID {
				t.Errorf("NotebookID = %q, want %q", res.NotebookID, tt.wantID)
			}

			saved, _ := st.WebCaptures(ctx, 1)
			if len(saved) != 1 || saved[0].TargetNotebookID != tt.wantID {
				t.Errorf("persisted target = %+v, want %q", saved, tt.wantID)
			}
		})
	}
}

func TestIngestPersistsRecord(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	dir := NewDirectory(st, logger.Nop())
	svc := NewService(st, dir, logger.Nop(),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "capture-1" }),
	)

	res := svc.Ingest(ctx, validInput())
	if !res.Success {
		t.Fatalf("Ingest() failed: %v", res.Err)
	}
	if res.Message != MessageCaptured {
		t.Errorf("Message = %q", res.Message)
	}

	saved, _ := st.WebCaptures(ctx, 0)
	if len(saved) != 1 {
		t.Fatalf("stored %d captures, want 1", len(saved))
	}
	got := saved[0]
	if got.ID != "capture-1" {
		t.Errorf("ID = %q, want capture-1", got.ID)
	}
	if got.Timestamp != "2025-01-01T00:00:00Z" {
		t.Errorf("Timestamp = %q, caller value must be kept verbatim", got.Timestamp)
	}
	if !got.CreatedAt.Equal(fixedNow) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, fixedNow)
	}
	if got.SelectedHTML != "<b>hello</b>" {
		t.Errorf("SelectedHTML = %q", got.SelectedHTML)
	}
}

func TestIngestTimestampDefaultsToNow(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc, _ := newTestService(st, logger.Nop())

	in := validInput()
	in.Timestamp = ""
	res := svc.Ingest(ctx, in)
	if !res.Success {
		t.Fatalf("Ingest() failed: %v", res.Err)
	}
	if want := fixedNow.Format(time.RFC3339); res.Capture.Timestamp != want {
		t.Errorf("Timestamp = %q, want %q", res.Capture.Timestamp, want)
	}
}

func TestIngestUnparseableTimestampAccepted(t *testing.T) {
	svc, _ := newTestService(memory.New(), logger.Nop())
	in := validInput()
	in.Timestamp = "yesterday-ish"

	res := svc.Ingest(context.Background(), in)
	if !res.Success || res.Capture.Timestamp != "yesterday-ish" {
		t.Errorf("Ingest() = %+v, timestamp must be kept verbatim", res)
	}
}

func TestIngestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		want   []string
	}{
		{"missing text", func(in *Input) { in.SelectedText = "" }, []string{"selectedText"}},
		{"blank domain", func(in *Input) { in.SourceDomain = "  " }, []string{"sourceDomain"}},
		{"missing url", func(in *Input) { in.SourceURL = "" }, []string{"sourceUrl"}},
		{"everything missing", func(in *Input) { *in = Input{} }, []string{"selectedText", "sourceDomain", "sourceUrl"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := memory.New()
			svc, _ := newTestService(st, logger.Nop())

			in := validInput()
			tt.mutate(&in)
			res := svc.Ingest(ctx, in)

			if res.Success {
				t.Fatal("Ingest() should fail validation")
			}
			if !res.IsValidation() {
				t.Fatalf("Err = %v, want *ValidationError", res.Err)
			}
			var verr *ValidationError
			errors.As(res.Err, &verr)
			if fmt.Sprint(verr.Fields) != fmt.Sprint(tt.want) {
				t.Errorf("Fields = %v, want %v", verr.Fields, tt.want)
			}

			if n, _ := st.CountWebCaptures(ctx); n != 0 {
				t.Errorf("store has %d captures, rejected input must not be persisted", n)
			}
		})
	}
}

func TestIngestStorageFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	st := &flakyStore{Store: memory.New(), failCapture: true}
	svc, _ := newTestService(st, logger.Wrap(zap.New(core)))

	res := svc.Ingest(context.Background(), validInput())
	if res.Success {
		t.Fatal("Ingest() should report failure")
	}
	if res.IsValidation() {
		t.Error("storage failure must not look like a validation error")
	}
	if !errors.Is(res.Err, errBoom) {
		t.Errorf("Err = %v, want wrapped errBoom", res.Err)
	}
	if res.Message == "" {
		t.Error("Message should carry a diagnostic")
	}

	entries := logs.FilterMessage("capture not saved").All()
	if len(entries) != 1 {
		t.Fatalf("expected one failure log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	for _, key := range []string{"op", "capture_id", "source_domain", "notebook_id"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("failure log missing field %q: %v", key, fields)
		}
	}
}

func TestIngestSurvivesSettingsFailure(t *testing.T) {
	st := &flakyStore{Store: memory.New(), failSettings: true}
	svc, _ := newTestService(st, logger.Nop())

	res := svc.Ingest(context.Background(), validInput())
	if !res.Success {
		t.Fatalf("Ingest() failed: %v", res.Err)
	}
	if res.NotebookID != domain.DefaultNotebookID || res.NotebookName != domain.DefaultNotebookName {
		t.Errorf("Ingest() = %q/%q, want defaults", res.NotebookID, res.NotebookName)
	}
}

func TestIngestNotebookName(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc, dir := newTestService(st, logger.Nop())

	if _, err := dir.Create(ctx, "research", "Research Notes", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := dir.SetTarget(ctx, "inbox", "My Inbox"); err != nil {
		t.Fatalf("SetTarget() error = %v", err)
	}

	tests := []struct {
		name     string
		explicit string
		wantName string
	}{
		{"directory match", "research", "Research Notes"},
		{"configured target not in directory", "", "My Inbox"},
		{"unknown notebook", "elsewhere", domain.DefaultNotebookName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.TargetNotebookID = tt.explicit
			res := svc.Ingest(ctx, in)
			if !res.Success {
				t.Fatalf("Ingest() failed: %v", res.Err)
			}
			if res.NotebookName != tt.wantName {
				t.Errorf("NotebookName = %q, want %q", res.NotebookName, tt.wantName)
			}
		})
	}
}

func TestIngestConcurrent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc, _ := newTestService(st, logger.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res := svc.Ingest(ctx, validInput()); !res.Success {
				t.Errorf("Ingest() failed: %v", res.Err)
			}
		}()
	}
	wg.Wait()

	saved, _ := st.WebCaptures(ctx, 0)
	if len(saved) != 100 {
		t.Fatalf("stored %d captures, want 100", len(saved))
	}
	ids := make(map[string]struct{}, len(saved))
	for _, c := range saved {
		ids[c.ID] = struct{}{}
	}
	if len(ids) != 100 {
		t.Errorf("got %d distinct ids, want 100", len(ids))
	}
}

func TestAdapters(t *testing.T) {
	strict := FromWebCaptureRequest(WebCaptureRequest{
		SelectedText:     "t",
		SelectedHTML:     "h",
		SourceDomain:     "d",
		SourceURL:        "u",
		TargetNotebookID: "n",
		Timestamp:        "ts",
	})
	want := Input{SelectedText: "t", SelectedHTML: "h", SourceDomain: "d", SourceURL: "u", TargetNotebookID: "n", Timestamp: "ts"}
	if strict != want {
		t.Errorf("FromWebCaptureRequest() = %+v, want %+v", strict, want)
	}

	tests := []struct {
		name string
		in   map[string]any
		want Input
	}{
		{
			name: "camelCase",
			in:   map[string]any{"selectedText": "t", "selectedHTML": "h", "sourceDomain": "d", "sourceUrl": "u", "targetNotebookId": "n", "timestamp": "ts"},
			want: want,
		},
		{
			name: "snake_case",
			in:   map[string]any{"selected_text": "t", "selected_html": "h", "source_domain": "d", "source_url": "u", "target_notebook_id": "n", "timestamp": "ts"},
			want: want,
		},
		{
			name: "non-string values ignored",
			in:   map[string]any{"selectedText": 42, "sourceDomain": true, "sourceUrl": nil, "targetNotebookId": []any{"x"}},
			want: Input{},
		},
		{
			name: "camelCase preferred",
			in:   map[string]any{"selectedText": "camel", "selected_text": "snake"},
			want: Input{SelectedText: "camel"},
		},
		{
			name: "empty map",
			in:   map[string]any{},
			want: Input{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromLooseMap(tt.in); got != tt.want {
				t.Errorf("FromLooseMap() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	one := (&ValidationError{Fields: []string{"sourceDomain"}}).Error()
	if one != "missing required field: sourceDomain" {
		t.Errorf("Error() = %q", one)
	}
	two := (&ValidationError{Fields: []string{"a", "b"}}).Error()
	if two != "missing required fields: a, b" {
		t.Errorf("Error() = %q", two)
	}
}
