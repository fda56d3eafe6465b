package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/copydock/internal/capture"
	"github.com/MrSnakeDoc/copydock/internal/domain"
	"github.com/MrSnakeDoc/copydock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/copydock/internal/logger"
)

// webCaptureResponse is the typed reply of POST /web-capture.
type webCaptureResponse struct {
	Success      bool   `json:"success"`
	NotebookID   string `json:"notebookId"`
	NotebookName string `json:"notebookName"`
	Message      string `json:"message"`
}

// WebCapture is the strict capture endpoint.
func WebCapture(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req capture.WebCaptureRequest
		if err := decodeJSON(w, r, d, &req); err != nil {
			writeJSON(w, d, http.StatusUnprocessableEntity, webCaptureResponse{Message: "Error: " + err.Error()})
			return
		}

		res := d.Captures.Ingest(r.Context(), capture.FromWebCaptureRequest(req))
		status := http.StatusOK
		if res.IsValidation() {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, d, status, webCaptureResponse{
			Success:      res.Success,
			NotebookID:   res.NotebookID,
			NotebookName: res.NotebookName,
			Message:      res.Message,
		})
	}
}

type looseCaptureResponse struct {
	Success      bool   `json:"success"`
	NotebookID   string `json:"notebookId,omitempty"`
	NotebookName string `json:"notebookName,omitempty"`
	Error        string `json:"error,omitempty"`
	Message      string `json:"message"`
}

// Capture is the permissive capture endpoint.
func Capture(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := decodeJSON(w, r, d, &payload); err != nil {
			writeJSON(w, d, http.StatusUnprocessableEntity, looseCaptureResponse{
				Error:   err.Error(),
				Message: capture.MessageFailed,
			})
			return
		}

		res := d.Captures.Ingest(r.Context(), capture.FromLooseMap(payload))
		if !res.Success {
			status := http.StatusOK
			if res.IsValidation() {
				status = http.StatusUnprocessableEntity
			}
			writeJSON(w, d, status, looseCaptureResponse{
				Error:   res.Err.Error(),
				Message: capture.MessageFailed,
			})
			return
		}

		writeJSON(w, d, http.StatusOK, looseCaptureResponse{
			Success:      true,
			NotebookID:   res.NotebookID,
			NotebookName: res.NotebookName,
			Message:      res.Message,
		})
	}
}

type webCapturesResponse struct {
	Captures []domain.WebCapture `json:"captures"`
	Count    int                 `json:"count"`
}

// ListWebCaptures returns the most recent captures first.
// ?limit=0 returns every capture.
func ListWebCaptures(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := d.CaptureLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeError(w, d, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
			limit = n
		}

		captures, err := d.Store.WebCaptures(r.Context(), limit)
		if err != nil {
			d.Logger.Error("failed to list web captures",
				logger.String("op", "list_web_captures"),
				logger.Int("limit", limit),
				logger.Error(err))
			writeError(w, d, http.StatusInternalServerError, "failed to list web captures")
			return
		}

		writeJSON(w, d, http.StatusOK, webCapturesResponse{Captures: captures, Count: len(captures)})
	}
}
