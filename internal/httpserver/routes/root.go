package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/copydock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/copydock/internal/httpserver/handlers"
)

func init() { Register(registerRoot) }

func registerRoot(r chi.Router, d deps.Deps) {
	r.Get("/", handlers.Root(d))
	r.Get("/health", handlers.Health(d))
	r.Get("/readyz", handlers.Readyz(d))
}
