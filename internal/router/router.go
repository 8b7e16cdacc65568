package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/yutingw/go-restaurant-suggestions/internal/api/restaurants"
	"github.com/yutingw/go-restaurant-suggestions/internal/api/sessions"
)

// Config contains dependencies needed for the router setup
type Config struct {
	RestaurantHandler *restaurants.Handler
	SessionHandler    *sessions.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", cfg.RestaurantHandler.Health)

		r.Post("/search", cfg.RestaurantHandler.SearchRestaurants)
		r.Get("/restaurants/{id}", cfg.RestaurantHandler.GetRestaurantByID)
		r.Get("/cuisines/popular", cfg.RestaurantHandler.GetPopularCuisines)

		r.Get("/session/{user_id}/status", cfg.SessionHandler.GetSessionStatus)
		r.Post("/session/{user_id}/clear", cfg.SessionHandler.ClearSession)
	})

	return r
}
