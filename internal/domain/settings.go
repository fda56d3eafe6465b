package domain

import "strings"

const (
	// DefaultNotebookID is the last link of the target notebook fallback chain.
	DefaultNotebookID = "default"
	// DefaultNotebookName is used whenever no notebook name is known.
	DefaultNotebookName = "Web Captures"
	// DefaultNotebookDescription describes the auto-created notebook.
	DefaultNotebookDescription = "Default notebook for web captures"
)

// Known settings keys.
const (
	SettingTargetNotebookID   = "target_notebook_id"
	SettingTargetNotebookName = "target_notebook_name"
)

// Settings is the singleton key/value record.
// A nil Settings is valid and behaves like an empty one.
type Settings map[string]string

// Clone returns an independent copy.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge returns a copy of s with patch applied on top.
// Keys absent from patch are preserved.
func (s Settings) Merge(patch map[string]string) Settings {
	out := s.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// TargetNotebookID returns the stored target id or DefaultNotebookID.
func (s Settings) TargetNotebookID() string {
	if v := strings.TrimSpace(s[SettingTargetNotebookID]); v != "" {
		return v
	}
	return DefaultNotebookID
}

// TargetNotebookName returns the stored target name or DefaultNotebookName.
func (s Settings) TargetNotebookName() string {
	if v := strings.TrimSpace(s[SettingTargetNotebookName]); v != "" {
		return v
	}
	return DefaultNotebookName
}
