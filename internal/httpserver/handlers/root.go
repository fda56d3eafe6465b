package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/copydock/internal/httpserver/deps"
)

type rootResponse struct {
	Message string `json:"message"`
}

func Root(d deps.Deps) http.HandlerFunc {
	msg := "CopyDock Backend API - Running with " + d.Store.Kind() + " storage"
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d, http.StatusOK, rootResponse{Message: msg})
	}
}
