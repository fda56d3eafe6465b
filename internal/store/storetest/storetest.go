// Package storetest holds the behaviour every store.Store backend must share.
// Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/copydock/internal/domain"
	"github.com/MrSnakeDoc/copydock/internal/store"
)

// Factory returns a fresh, empty store. Cleanup is the factory's job.
type Factory func(t *testing.T) store.Store

// Run executes the shared suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"StatusChecksInsertionOrder", testStatusChecksInsertionOrder},
		{"StatusChecksSameClientDistinctIDs", testStatusChecksSameClientDistinctIDs},
		{"WebCapturesMostRecentFirst", testWebCapturesMostRecentFirst},
		{"WebCapturesRoundTrip", testWebCapturesRoundTrip},
		{"EmptyCollections", testEmptyCollections},
		{"NotebooksInsertionOrder", testNotebooksInsertionOrder},
		{"AddNotebookDuplicate", testAddNotebookDuplicate},
		{"EnsureNotebookOnlyWhenEmpty", testEnsureNotebookOnlyWhenEmpty},
		{"EnsureNotebookConcurrent", testEnsureNotebookConcurrent},
		{"UpdateSettingsMerges", testUpdateSettingsMerges},
		{"ConcurrentWebCaptures", testConcurrentWebCaptures},
		{"Ping", testPing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

// Capture builds a valid capture for tests.
func Capture(text string) domain.WebCapture {
	return domain.WebCapture{
		ID:               uuid.NewString(),
		SelectedText:     text,
		SelectedHTML:     "<p>" + text + "</p>",
		SourceDomain:     "example.com",
		SourceURL:        "https://example.com/article",
		TargetNotebookID: domain.DefaultNotebookID,
		Timestamp:        "2025-01-02T03:04:05.000Z",
		CreatedAt:        time.Now().UTC(),
	}
}

func testStatusChecksInsertionOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	names := []string{"first", "second", "third"}
	for _, name := range names {
		rec := domain.StatusCheck{ID: uuid.NewString(), ClientName: name, Timestamp: time.Now().UTC()}
		if err := s.AddStatusCheck(ctx, rec); err != nil {
			t.Fatalf("AddStatusCheck() error = %v", err)
		}
	}

	checks, err := s.StatusChecks(ctx)
	if err != nil {
		t.Fatalf("StatusChecks() error = %v", err)
	}
	if len(checks) != len(names) {
		t.Fatalf("StatusChecks() returned %d records, want %d", len(checks), len(names))
	}
	for i, name := range names {
		if checks[i].ClientName != name {
			t.Errorf("StatusChecks()[%d].ClientName = %q, want %q", i, checks[i].ClientName, name)
		}
	}
}

func testStatusChecksSameClientDistinctIDs(t *testing.T, s store.Store) {
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		rec := domain.StatusCheck{ID: uuid.NewString(), ClientName: "alice", Timestamp: time.Now().UTC()}
		if err := s.AddStatusCheck(ctx, rec); err != nil {
			t.Fatalf("AddStatusCheck() error = %v", err)
		}
	}

	checks, err := s.StatusChecks(ctx)
	if err != nil {
		t.Fatalf("StatusChecks() error = %v", err)
	}
	if len(checks) != 2 {
		t.Fatalf("StatusChecks() returned %d records, want 2", len(checks))
	}
	if checks[0].ID == checks[1].ID {
		t.Error("two status checks share the same id")
	}
	if checks[0].ClientName != checks[1].ClientName {
		t.Errorf("client names differ: %q vs %q", checks[0].ClientName, checks[1].ClientName)
	}
}

func testWebCapturesMostRecentFirst(t *testing.T, s store.Store) {
	ctx := context.Background()
	c1, c2, c3 := Capture("C1"), Capture("C2"), Capture("C3")
	for _, c := range []domain.WebCapture{c1, c2, c3} {
		if err := s.AddWebCapture(ctx, c); err != nil {
			t.Fatalf("AddWebCapture() error = %v", err)
		}
	}

	got, err := s.WebCaptures(ctx, 2)
	if err != nil {
		t.Fatalf("WebCaptures(2) error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("WebCaptures(2) returned %d records, want 2", len(got))
	}
	if got[0].ID != c3.ID || got[1].ID != c2.ID {
		t.Errorf("WebCaptures(2) = [%s %s], want [C3 C2]", got[0].SelectedText, got[1].SelectedText)
	}

	all, err := s.WebCaptures(ctx, 0)
	if err != nil {
		t.Fatalf("WebCaptures(0) error = %v", err)
	}
	if len(all) != 3 || all[2].ID != c1.ID {
		t.Errorf("WebCaptures(0) should return all captures newest first, got %d", len(all))
	}

	more, err := s.WebCaptures(ctx, 50)
	if err != nil {
		t.Fatalf("WebCaptures(50) error = %v", err)
	}
	if len(more) != 3 {
		t.Errorf("WebCaptures(50) returned %d records, want 3", len(more))
	}
}

func testWebCapturesRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	in := Capture("round trip")
	in.TargetNotebookID = "research"
	in.Timestamp = "not a parseable time"

	if err := s.AddWebCapture(ctx, in); err != nil {
		t.Fatalf("AddWebCapture() error = %v", err)
	}

	got, err := s.WebCaptures(ctx, 1)
	if err != nil {
		t.Fatalf("WebCaptures() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("WebCaptures() returned %d records, want 1", len(got))
	}
	out := got[0]
	if out.ID != in.ID ||
		out.SelectedText != in.SelectedText ||
		out.SelectedHTML != in.SelectedHTML ||
		out.SourceDomain != in.SourceDomain ||
		out.SourceURL != in.SourceURL ||
		out.TargetNotebookID != in.TargetNotebookID ||
		out.Timestamp != in.Timestamp {
		t.Errorf("WebCaptures() = %+v, want %+v", out, in)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", out.CreatedAt, in.CreatedAt)
	}

	n, err := s.CountWebCaptures(ctx)
	if err != nil {
		t.Fatalf("CountWebCaptures() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CountWebCaptures() = %d, want 1", n)
	}
}

func testEmptyCollections(t *testing.T, s store.Store) {
	ctx := context.Background()

	checks, err := s.StatusChecks(ctx)
	if err != nil || checks == nil || len(checks) != 0 {
		t.Errorf("StatusChecks() on empty store = %v, %v; want empty non-nil slice", checks, err)
	}
	captures, err := s.WebCaptures(ctx, 10)
	if err != nil || captures == nil || len(captures) != 0 {
		t.Errorf("WebCaptures() on empty store = %v, %v; want empty non-nil slice", captures, err)
	}
	notebooks, err := s.Notebooks(ctx)
	if err != nil || notebooks == nil || len(notebooks) != 0 {
		t.Errorf("Notebooks() on empty store = %v, %v; want empty non-nil slice", notebooks, err)
	}
	settings, err := s.Settings(ctx)
	if err != nil || settings == nil || len(settings) != 0 {
		t.Errorf("Settings() on empty store = %v, %v; want empty non-nil map", settings, err)
	}
}

func testNotebooksInsertionOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	ids := []string{"zeta", "alpha", "mid"}
	for _, id := range ids {
		nb := domain.Notebook{ID: id, Name: "Notebook " + id, CreatedAt: time.Now().UTC(), Description: "d"}
		if err := s.AddNotebook(ctx, nb); err != nil {
			t.Fatalf("AddNotebook(%s) error = %v", id, err)
		}
	}

	notebooks, err := s.Notebooks(ctx)
	if err != nil {
		t.Fatalf("Notebooks() error = %v", err)
	}
	if len(notebooks) != len(ids) {
		t.Fatalf("Notebooks() returned %d, want %d", len(notebooks), len(ids))
	}
	for i, id := range ids {
		if notebooks[i].ID != id {
			t.Errorf("Notebooks()[%d].ID = %q, want %q", i, notebooks[i].ID, id)
		}
		if notebooks[i].Name != "Notebook "+id {
			t.Errorf("Notebooks()[%d].Name = %q", i, notebooks[i].Name)
		}
	}
}

func testAddNotebookDuplicate(t *testing.T, s store.Store) {
	ctx := context.Background()
	nb := domain.Notebook{ID: "dup", Name: "First", CreatedAt: time.Now().UTC()}
	if err := s.AddNotebook(ctx, nb); err != nil {
		t.Fatalf("AddNotebook() error = %v", err)
	}

	nb.Name = "Second"
	err := s.AddNotebook(ctx, nb)
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("AddNotebook() duplicate error = %v, want ErrDuplicate", err)
	}

	notebooks, err := s.Notebooks(ctx)
	if err != nil {
		t.Fatalf("Notebooks() error = %v", err)
	}
	if len(notebooks) != 1 || notebooks[0].Name != "First" {
		t.Errorf("duplicate append changed the collection: %+v", notebooks)
	}
}

func testEnsureNotebookOnlyWhenEmpty(t *testing.T, s store.Store) {
	ctx := context.Background()
	def := domain.DefaultNotebook(time.Now())

	created, err := s.EnsureNotebook(ctx, def)
	if err != nil {
		t.Fatalf("EnsureNotebook() error = %v", err)
	}
	if !created {
		t.Error("EnsureNotebook() on empty store should create")
	}

	created, err = s.EnsureNotebook(ctx, def)
	if err != nil {
		t.Fatalf("EnsureNotebook() second call error = %v", err)
	}
	if created {
		t.Error("EnsureNotebook() second call should not create")
	}

	notebooks, err := s.Notebooks(ctx)
	if err != nil {
		t.Fatalf("Notebooks() error = %v", err)
	}
	if len(notebooks) != 1 || notebooks[0].ID != domain.DefaultNotebookID {
		t.Errorf("Notebooks() = %+v, want exactly the default notebook", notebooks)
	}
}

func testEnsureNotebookConcurrent(t *testing.T, s store.Store) {
	ctx := context.Background()
	const callers = 16

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.EnsureNotebook(ctx, domain.DefaultNotebook(time.Now()))
			if err != nil {
				t.Errorf("EnsureNotebook() error = %v", err)
				return
			}
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("EnsureNotebook() created %d notebooks concurrently, want 1", created)
	}
	notebooks, err := s.Notebooks(ctx)
	if err != nil {
		t.Fatalf("Notebooks() error = %v", err)
	}
	if len(notebooks) != 1 {
		t.Errorf("Notebooks() returned %d, want 1", len(notebooks))
	}
}

func testUpdateSettingsMerges(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.UpdateSettings(ctx, map[string]string{
		domain.SettingTargetNotebookID:   "inbox",
		domain.SettingTargetNotebookName: "Inbox",
	}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}

	merged, err := s.UpdateSettings(ctx, map[string]string{domain.SettingTargetNotebookID: "X"})
	if err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if merged[domain.SettingTargetNotebookID] != "X" {
		t.Errorf("UpdateSettings() result id = %q, want X", merged[domain.SettingTargetNotebookID])
	}

	got, err := s.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if got[domain.SettingTargetNotebookID] != "X" {
		t.Errorf("Settings() id = %q, want X", got[domain.SettingTargetNotebookID])
	}
	if got[domain.SettingTargetNotebookName] != "Inbox" {
		t.Errorf("Settings() name = %q, want Inbox (merge must preserve keys)", got[domain.SettingTargetNotebookName])
	}

	unchanged, err := s.UpdateSettings(ctx, map[string]string{})
	if err != nil {
		t.Fatalf("UpdateSettings() with empty patch error = %v", err)
	}
	if len(unchanged) != 2 {
		t.Errorf("UpdateSettings() with empty patch = %v, want both keys", unchanged)
	}
}

func testConcurrentWebCaptures(t *testing.T, s store.Store) {
	ctx := context.Background()
	const (
		workers    = 10
		perWorker  = 10
		totalCount = workers * perWorker
	)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if err := s.AddWebCapture(ctx, Capture(fmt.Sprintf("w%d-%d", w, i))); err != nil {
					t.Errorf("AddWebCapture() error = %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	captures, err := s.WebCaptures(ctx, 0)
	if err != nil {
		t.Fatalf("WebCaptures() error = %v", err)
	}
	if len(captures) != totalCount {
		t.Fatalf("WebCaptures() returned %d, want %d", len(captures), totalCount)
	}
	seen := make(map[string]bool, totalCount)
	for _, c := range captures {
		if seen[c.ID] {
			t.Errorf("duplicate capture id %s", c.ID)
		}
		seen[c.ID] = true
	}

	n, err := s.CountWebCaptures(ctx)
	if err != nil {
		t.Fatalf("CountWebCaptures() error = %v", err)
	}
	if n != totalCount {
		t.Errorf("CountWebCaptures() = %d, want %d", n, totalCount)
	}
}

func testPing(t *testing.T, s store.Store) {
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if s.Kind() == "" {
		t.Error("Kind() should not be empty")
	}
}
