package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/schoolregistry/server/internal/auth"
	"github.com/schoolregistry/server/internal/http/handlers"
	"github.com/schoolregistry/server/internal/middleware"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	logger *slog.Logger,
	authHandler *handlers.AuthHandler,
	schoolsHandler *handlers.SchoolsHandler,
	tokens *auth.TokenService,
	admin *auth.AdminChecker,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Authenticate(tokens, admin))

	healthHandler := handlers.NewHealthHandler()
	r.Get("/health", healthHandler.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/send-otp", authHandler.HandleSendOTP)
			r.Post("/verify-otp", authHandler.HandleVerifyOTP)
			r.Get("/check", authHandler.HandleCheck)
		})

		r.Route("/schools", func(r chi.Router) {
			r.Get("/", schoolsHandler.HandleList)

			// Creating requires a session, deleting additionally admin.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", schoolsHandler.HandleCreate)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.RequireAdmin)
				r.Delete("/{id}", schoolsHandler.HandleDelete)
			})
		})
	})

	return r
}
