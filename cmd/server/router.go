package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rowanvale/taskengine/internal/api"
	apiMiddleware "github.com/rowanvale/taskengine/internal/api/middleware"
)

// setupRouter builds the HTTP routing tree from the application's services.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	dependencyHandler := api.NewDependencyHandler(app.dependencyService, app.logger)
	recurrenceHandler := api.NewRecurrenceHandler(app.recurrenceService, app.logger)
	suggestionHandler := api.NewSuggestionHandler(app.priorityService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks/{id}", func(r chi.Router) {
			r.Post("/dependencies", dependencyHandler.AddDependency)
			r.Delete("/dependencies/{dependsOnID}", dependencyHandler.RemoveDependency)
			r.Get("/dependencies/validate", dependencyHandler.ValidateDependency)

			r.Post("/recurrence/generate", recurrenceHandler.GenerateInstances)
			r.Post("/recurrence/regenerate", recurrenceHandler.RegenerateInstances)

			r.Post("/priority", suggestionHandler.ApplySuggestion)
		})

		r.Post("/recurrence/validate", recurrenceHandler.ValidateRule)

		r.Route("/suggestions", func(r chi.Router) {
			r.Get("/", suggestionHandler.ListSuggestions)
			r.Post("/analyze", suggestionHandler.AnalyzePriorities)
			r.Post("/corrections", suggestionHandler.RecordCorrections)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
