package domain

import (
	"testing"
	"time"
)

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name             string
		explicitID       string
		settings         Settings
		expectedID       string
		expectedName     string
		expectedExplicit bool
	}{
		{
			name:             "explicit id wins over settings",
			explicitID:       "research",
			settings:         Settings{SettingTargetNotebookID: "inbox", SettingTargetNotebookName: "Inbox"},
			expectedID:       "research",
			expectedName:     "Inbox",
			expectedExplicit: true,
		},
		{
			name:             "explicit id is trimmed",
			explicitID:       "  research ",
			settings:         nil,
			expectedID:       "research",
			expectedName:     DefaultNotebookName,
			expectedExplicit: true,
		},
		{
			name:         "stored settings used when no explicit id",
			explicitID:   "",
			settings:     Settings{SettingTargetNotebookID: "inbox", SettingTargetNotebookName: "Inbox"},
			expectedID:   "inbox",
			expectedName: "Inbox",
		},
		{
			name:         "blank explicit id falls through",
			explicitID:   "   ",
			settings:     Settings{SettingTargetNotebookID: "inbox"},
			expectedID:   "inbox",
			expectedName: DefaultNotebookName,
		},
		{
			name:         "nil settings use defaults",
			explicitID:   "",
			settings:     nil,
			expectedID:   DefaultNotebookID,
			expectedName: DefaultNotebookName,
		},
		{
			name:         "empty stored values use defaults",
			explicitID:   "",
			settings:     Settings{SettingTargetNotebookID: "", SettingTargetNotebookName: " "},
			expectedID:   DefaultNotebookID,
			expectedName: DefaultNotebookName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveTarget(tt.explicitID, tt.settings)
			if got.NotebookID != tt.expectedID {
				t.Errorf("ResolveTarget() id = %q, want %q", got.NotebookID, tt.expectedID)
			}
			if got.NotebookName != tt.expectedName {
				t.Errorf("ResolveTarget() name = %q, want %q", got.NotebookName, tt.expectedName)
			}
			if got.Explicit != tt.expectedExplicit {
				t.Errorf("ResolveTarget() explicit = %v, want %v", got.Explicit, tt.expectedExplicit)
			}
		})
	}
}

func TestNotebookName(t *testing.T) {
	notebooks := []Notebook{
		DefaultNotebook(time.Now()),
		{ID: "research", Name: "Research"},
		{ID: "unnamed", Name: ""},
	}
	settings := Settings{SettingTargetNotebookID: "inbox", SettingTargetNotebookName: "Inbox"}

	tests := []struct {
		name     string
		id       string
		expected string
	}{
		{name: "directory match", id: "research", expected: "Research"},
		{name: "default notebook", id: DefaultNotebookID, expected: DefaultNotebookName},
		{name: "configured target not in directory", id: "inbox", expected: "Inbox"},
		{name: "unknown id", id: "nowhere", expected: DefaultNotebookName},
		{name: "blank directory name falls back", id: "unnamed", expected: DefaultNotebookName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NotebookName(tt.id, notebooks, settings); got != tt.expected {
				t.Errorf("NotebookName(%q) = %q, want %q", tt.id, got, tt.expected)
			}
		})
	}
}

func TestSettingsMergePreservesKeys(t *testing.T) {
	original := Settings{
		SettingTargetNotebookID:   "inbox",
		SettingTargetNotebookName: "Inbox",
	}

	merged := original.Merge(map[string]string{SettingTargetNotebookID: "X"})

	if merged.TargetNotebookID() != "X" {
		t.Errorf("Merge() target id = %q, want %q", merged.TargetNotebookID(), "X")
	}
	if merged.TargetNotebookName() != "Inbox" {
		t.Errorf("Merge() target name = %q, want %q", merged.TargetNotebookName(), "Inbox")
	}
	if original[SettingTargetNotebookID] != "inbox" {
		t.Error("Merge() must not mutate the receiver")
	}
}

func TestNilSettingsMerge(t *testing.T) {
	var s Settings
	merged := s.Merge(map[string]string{"theme": "dark"})
	if merged["theme"] != "dark" {
		t.Errorf("Merge() on nil settings lost key, got %v", merged)
	}
}
