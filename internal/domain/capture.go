package domain

import "time"

// StatusCheck records that a client pinged the backend.
// It is immutable once created.
type StatusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// WebCapture is a piece of content selected in the browser and filed
// into a notebook.
//
// Captures form an append-only log: they are never updated or deleted.
type WebCapture struct {
	// ─────────────────────────────
	// Identity (server generated)
	// ─────────────────────────────

	ID string `json:"id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	SelectedText string `json:"selectedText"`
	SelectedHTML string `json:"selectedHTML"`

	// ─────────────────────────────
	// Provenance
	// ─────────────────────────────

	SourceDomain string `json:"sourceDomain"`
	SourceURL    string `json:"sourceUrl"`

	// ─────────────────────────────
	// Routing
	// ─────────────────────────────

	// TargetNotebookID is never empty once persisted.
	TargetNotebookID string `json:"targetNotebookId"`

	// ─────────────────────────────
	// Time
	// ─────────────────────────────

	// Timestamp is the client-side capture time, kept verbatim.
	Timestamp string `json:"timestamp"`

	// CreatedAt is when the server accepted the capture.
	CreatedAt time.Time `json:"createdAt"`
}

// Notebook is a named destination bucket for captures.
type Notebook struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	Description string    `json:"description"`
}

// DefaultNotebook returns the notebook materialized when none exist.
func DefaultNotebook(now time.Time) Notebook {
	return Notebook{
		ID:          DefaultNotebookID,
		Name:        DefaultNotebookName,
		CreatedAt:   now.UTC(),
		Description: DefaultNotebookDescription,
	}
}
