package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	httpSwagger "github.com/swaggo/http-swagger"

	"climateguard/internal/logger"
	"climateguard/internal/metrics"
)

// routes wires middlewares and endpoints. CORS origins come from CORS_ALLOWED_ORIGINS.
func (a *App) routes() http.Handler {
	r := chi.NewRouter()

	// RemoteAddr carries the client address from X-Forwarded-For or X-Real-IP
	// behind a proxy; users are geolocated from it.
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(logger.Middleware(a.log))
	r.Use(a.metrics.Middleware)

	r.Get("/healthz", a.handleHealth)
	r.Handle("/metrics", metrics.Handler(a.gatherer))

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=60")
		w.Write(openapiYAML)
	})

	r.Mount("/swagger", httpSwagger.Handler(
		httpSwagger.URL("/api/openapi.yaml"),
	))

	r.Route("/api", func(api chi.Router) {
		api.Post("/onboarding", a.handleOnboarding)
		api.Get("/news", a.handleNews)
		api.Get("/news/categories", a.handleNewsCategories)

		api.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware)
			pr.Get("/me", a.handleMe)
			pr.Patch("/me", a.handleUpdateMe)
			pr.Get("/state", a.handleState)
			pr.Post("/refresh", a.handleRefresh)
			pr.Put("/location", a.handleLocation)
			pr.Get("/leaderboard", a.handleLeaderboard)

			pr.Get("/environment", a.handleEnvironment)
			pr.Get("/environment/history", a.handleHistory)
			pr.Get("/alerts", a.handleAlerts)
			pr.Delete("/alerts/{id}", a.handleDismissAlert)

			pr.Route("/projects", func(fr chi.Router) {
				fr.Get("/", a.handleListProjects)
				fr.Post("/", a.handleCreateProject)
				fr.Get("/search", a.handleSearchProjects)
				fr.Get("/recommended", a.handleRecommendedProjects)
				fr.Get("/featured", a.handleFeaturedProjects)
				fr.Post("/join", a.handleBatchJoin)
				fr.Post("/{id}/join", a.handleJoinProject)
				fr.Delete("/{id}/join", a.handleLeaveProject)
			})
			pr.Get("/community/stats", a.handleCommunityStats)

			pr.Get("/achievements", a.handleAchievements)
			pr.Get("/goals", a.handleGoals)
			pr.Get("/kit", a.handleKit)
			pr.Patch("/kit/{id}", a.handleUpdateKit)
			pr.Get("/actions", a.handleListActions)
			pr.Post("/actions", a.handleAddAction)

			pr.Post("/chat", a.handleChat)
			pr.Get("/tips", a.handleTips)
			pr.Get("/insights", a.handleInsights)
			pr.Get("/recommendations", a.handleRecommendations)

			pr.Get("/emergency/contacts", a.handleEmergencyContacts)
			pr.Get("/emergency/protocols", a.handleEmergencyProtocols)
		})
	})

	return r
}
