package capture

import (
	"strings"
)

// Input is the normalized capture every entry point converges on.
type Input struct {
	SelectedText     string
	SelectedHTML     string
	SourceDomain     string
	SourceURL        string
	TargetNotebookID string // empty means "use settings"
	Timestamp        string // client time, kept verbatim; empty means "now"
}

// ValidationError lists the required fields a request did not provide.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return "missing required field: " + e.Fields[0]
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Validate reports every blank required field at once.
func (in Input) Validate() error {
	var missing []string
	if strings.TrimSpace(in.SelectedText) == "" {
		missing = append(missing, "selectedText")
	}
	if strings.TrimSpace(in.SourceDomain) == "" {
		missing = append(missing, "sourceDomain")
	}
	if strings.TrimSpace(in.SourceURL) == "" {
		missing = append(missing, "sourceUrl")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// WebCaptureRequest is the typed body of POST /web-capture.
type WebCaptureRequest struct {
	SelectedText     string `json:"selectedText"`
	SelectedHTML     string `json:"selectedHTML"`
	SourceDomain     string `json:"sourceDomain"`
	SourceURL        string `json:"sourceUrl"`
	TargetNotebookID string `json:"targetNotebookId"`
	Timestamp        string `json:"timestamp"`
}

// FromWebCaptureRequest is the strict adapter.
func FromWebCaptureRequest(req WebCaptureRequest) Input {
	return Input{
		SelectedText:     req.SelectedText,
		SelectedHTML:     req.SelectedHTML,
		SourceDomain:     req.SourceDomain,
		SourceURL:        req.SourceURL,
		TargetNotebookID: req.TargetNotebookID,
		Timestamp:        req.Timestamp,
	}
}

// Accepted spellings per field, first match wins.
var (
	keysSelectedText = []string{"selectedText", "selected_text"}
	keysSelectedHTML = []string{"selectedHTML", "selectedHtml", "selected_html"}
	keysSourceDomain = []string{"sourceDomain", "source_domain"}
	keysSourceURL    = []string{"sourceUrl", "sourceURL", "source_url"}
	keysTarget       = []string{"targetNotebookId", "targetNotebookID", "target_notebook_id"}
	keysTimestamp    = []string{"timestamp"}
)

// FromLooseMap is the permissive adapter used by POST /capture.
// It accepts camelCase and snake_case keys; non-string values are ignored.
func FromLooseMap(m map[string]any) Input {
	return Input{
		SelectedText:     firstString(m, keysSelectedText),
		SelectedHTML:     firstString(m, keysSelectedHTML),
		SourceDomain:     firstString(m, keysSourceDomain),
		SourceURL:        firstString(m, keysSourceURL),
		TargetNotebookID: firstString(m, keysTarget),
		Timestamp:        firstString(m, keysTimestamp),
	}
}

func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
