package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/airesearch/interview-studio/app"
	"github.com/airesearch/interview-studio/handlers"
)

// SetupRoutes configures the read API routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Logger)
	runHandler := handlers.NewRunHandler(deps.Runs, deps.Summaries, deps.Logger)
	personaHandler := handlers.NewPersonaHandler(deps.Personas, deps.Logger)
	interviewHandler := handlers.NewInterviewHandler(deps.Interviews, deps.Analyses, deps.Logger)
	modelHandler := handlers.NewModelHandler(deps.Registry, deps.Logger)

	r.Get("/healthz", healthHandler.HandleHealth)
	r.Get("/readyz", healthHandler.HandleReadiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", runHandler.HandleList)
			r.Get("/latest", runHandler.HandleLatest)
			r.Get("/{id}", runHandler.HandleGet)
			r.Get("/{id}/summaries", runHandler.HandleSummaries)
		})

		r.Get("/personas", personaHandler.HandleList)

		r.Route("/interviews", func(r chi.Router) {
			r.Get("/", interviewHandler.HandleList)
			r.Get("/{id}", interviewHandler.HandleGet)
			r.Get("/{id}/analysis", interviewHandler.HandleAnalysis)
		})

		r.Get("/models", modelHandler.HandleList)
		r.Get("/providers", modelHandler.HandleProviders)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
