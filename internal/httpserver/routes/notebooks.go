package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/copydock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/copydock/internal/httpserver/handlers"
)

func init() { Register(registerNotebooks) }

func registerNotebooks(r chi.Router, d deps.Deps) {
	r.Get("/notebooks", handlers.ListNotebooks(d))
	r.Post("/notebooks", handlers.CreateNotebook(d))
	r.Get("/settings/target-notebook", handlers.GetTargetNotebook(d))
	r.Post("/settings/target-notebook", handlers.SetTargetNotebook(d))
}
