package api

import (
	"net/http"
	"time"

	"taskzone/internal/api/handler"
	"taskzone/internal/app/service"
	"taskzone/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	tokenService *service.TokenService,
	taskService *service.TaskService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the access token when present and puts claims in context.
	// The Authenticator middleware on protected groups decides whether a
	// missing or invalid token is fatal.
	r.Use(jwtauth.Verifier(security.AccessAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		userHandler := handler.NewUserHandler(authService, tokenService)
		api.Route("/users", userHandler.RegisterRoutes)

		taskHandler := handler.NewTaskHandler(taskService)
		api.Route("/tasks", taskHandler.RegisterRoutes)
	})

	return r
}
