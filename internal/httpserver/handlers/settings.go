package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/copydock/internal/capture"
	"github.com/MrSnakeDoc/copydock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/copydock/internal/logger"
)

type targetNotebookPayload struct {
	NotebookID   string `json:"notebookId"`
	NotebookName string `json:"notebookName"`
}

type setTargetResponse struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	NotebookID   string   `json:"notebookId,omitempty"`
	NotebookName string   `json:"notebookName,omitempty"`
	Missing      []string `json:"missing,omitempty"`
}

// GetTargetNotebook never fails: storage errors fall back to the defaults.
func GetTargetNotebook(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := d.Notebooks.Target(r.Context())
		if err != nil {
			d.Logger.Warn("target notebook unavailable, serving defaults",
				logger.String("op", "get_target_notebook"),
				logger.Error(err))
		}
		writeJSON(w, d, http.StatusOK, targetNotebookPayload{
			NotebookID:   target.NotebookID,
			NotebookName: target.NotebookName,
		})
	}
}

func SetTargetNotebook(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req targetNotebookPayload
		if err := decodeJSON(w, r, d, &req); err != nil {
			writeJSON(w, d, http.StatusUnprocessableEntity, setTargetResponse{Message: err.Error()})
			return
		}

		target, err := d.Notebooks.SetTarget(r.Context(), req.NotebookID, req.NotebookName)
		if err != nil {
			var verr *capture.ValidationError
			if errors.As(err, &verr) {
				writeJSON(w, d, http.StatusUnprocessableEntity, setTargetResponse{
					Message: verr.Error(),
					Missing: verr.Fields,
				})
				return
			}
			d.Logger.Error("failed to update target notebook",
				logger.String("op", "set_target_notebook"),
				logger.String("notebook_id", req.NotebookID),
				logger.Error(err))
			writeJSON(w, d, http.StatusInternalServerError, setTargetResponse{Message: "failed to update target notebook"})
			return
		}

		writeJSON(w, d, http.StatusOK, setTargetResponse{
			Success:      true,
			Message:      "Target notebook updated",
			NotebookID:   target.NotebookID,
			NotebookName: target.NotebookName,
		})
	}
}
