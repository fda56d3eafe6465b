package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/copydock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/copydock/internal/httpserver/handlers"
)

func init() { Register(registerStatus) }

func registerStatus(r chi.Router, d deps.Deps) {
	r.Get("/status", handlers.ListStatusChecks(d))
	r.Post("/status", handlers.CreateStatusCheck(d))
}
