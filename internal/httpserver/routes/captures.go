package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/copydock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/copydock/internal/httpserver/handlers"
)

func init() { Register(registerCaptures) }

func registerCaptures(r chi.Router, d deps.Deps) {
	r.Post("/web-capture", handlers.WebCapture(d))
	r.Get("/web-captures", handlers.ListWebCaptures(d))
	r.Post("/capture", handlers.Capture(d))
}
