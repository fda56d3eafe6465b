package domain

import "strings"

// Target identifies the notebook a capture is routed to.
type Target struct {
	NotebookID   string
	NotebookName string
	// Explicit is true when the id came from the request itself.
	Explicit bool
}

// ResolveTarget applies the routing fallback chain:
//   - explicit id from the request (trimmed, non-empty)
//   - stored target_notebook_id
//   - DefaultNotebookID
//
// The name always comes from settings (or DefaultNotebookName). Callers that
// want the directory name for the resolved id look it up separately.
func ResolveTarget(explicitID string, settings Settings) Target {
	if id := strings.TrimSpace(explicitID); id != "" {
		return Target{
			NotebookID:   id,
			NotebookName: settings.TargetNotebookName(),
			Explicit:     true,
		}
	}
	return Target{
		NotebookID:   settings.TargetNotebookID(),
		NotebookName: settings.TargetNotebookName(),
	}
}

// NotebookName picks the display name for id.
// A directory match wins; otherwise the settings name is used when id is the
// configured target, and DefaultNotebookName in every other case.
func NotebookName(id string, notebooks []Notebook, settings Settings) string {
	for _, nb := range notebooks {
		if nb.ID == id && strings.TrimSpace(nb.Name) != "" {
			return nb.Name
		}
	}
	if id == settings.TargetNotebookID() {
		return settings.TargetNotebookName()
	}
	return DefaultNotebookName
}
