package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/copydock/internal/domain"
	"github.com/MrSnakeDoc/copydock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/copydock/internal/logger"
)

type statusCheckRequest struct {
	ClientName string `json:"client_name"`
}

func CreateStatusCheck(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusCheckRequest
		if err := decodeJSON(w, r, d, &req); err != nil {
			writeError(w, d, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if strings.TrimSpace(req.ClientName) == "" {
			writeError(w, d, http.StatusUnprocessableEntity, "missing required field: client_name")
			return
		}

		rec := domain.StatusCheck{
			ID:         uuid.NewString(),
			ClientName: req.ClientName,
			Timestamp:  d.Now().UTC(),
		}
		if err := d.Store.AddStatusCheck(r.Context(), rec); err != nil {
			d.Logger.Error("failed to save status check",
				logger.String("op", "create_status_check"),
				logger.String("client_name", rec.ClientName),
				logger.Error(err))
			writeError(w, d, http.StatusInternalServerError, "failed to save status check")
			return
		}

		writeJSON(w, d, http.StatusOK, rec)
	}
}

func ListStatusChecks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks, err := d.Store.StatusChecks(r.Context())
		if err != nil {
			d.Logger.Error("failed to list status checks",
				logger.String("op", "list_status_checks"),
				logger.Error(err))
			writeError(w, d, http.StatusInternalServerError, "failed to list status checks")
			return
		}
		writeJSON(w, d, http.StatusOK, checks)
	}
}
