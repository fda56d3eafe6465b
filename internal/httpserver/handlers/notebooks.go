package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/copydock/internal/capture"
	"github.com/MrSnakeDoc/copydock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/copydock/internal/logger"
	"github.com/MrSnakeDoc/copydock/internal/store"
)

// DegradedHeader is set when /notebooks serves the in-memory default.
const DegradedHeader = "X-CopyDock-Degraded"

func ListNotebooks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notebooks, degraded := d.Notebooks.List(r.Context())
		if degraded {
			w.Header().Set(DegradedHeader, "true")
		}
		writeJSON(w, d, http.StatusOK, notebooks)
	}
}

type createNotebookRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func CreateNotebook(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createNotebookRequest
		if err := decodeJSON(w, r, d, &req); err != nil {
			writeError(w, d, http.StatusUnprocessableEntity, err.Error())
			return
		}

		nb, err := d.Notebooks.Create(r.Context(), req.ID, req.Name, req.Description)
		if err != nil {
			var verr *capture.ValidationError
			switch {
			case errors.As(err, &verr):
				writeError(w, d, http.StatusUnprocessableEntity, verr.Error())
			case errors.Is(err, store.ErrDuplicate):
				writeError(w, d, http.StatusConflict, "notebook "+req.ID+" already exists")
			default:
				d.Logger.Error("failed to create notebook",
					logger.String("op", "create_notebook"),
					logger.String("notebook_id", req.ID),
					logger.Error(err))
				writeError(w, d, http.StatusInternalServerError, "failed to create notebook")
			}
			return
		}

		writeJSON(w, d, http.StatusCreated, nb)
	}
}
