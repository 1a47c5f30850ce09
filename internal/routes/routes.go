package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/knowara/portal/internal/auth"
	"github.com/knowara/portal/internal/handlers"
	"github.com/knowara/portal/internal/middleware"
	"github.com/knowara/portal/internal/models"
	pkghttp "github.com/knowara/portal/pkg/http"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	boardHandler *handlers.BoardHandler,
	accountHandler *handlers.AccountHandler,
	tokenManager *auth.TokenManager,
	accounts auth.AccountFetcher,
) {
	// Unknown paths and methods answer with the same envelope as every
	// other failure
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		pkghttp.WriteNotFound(w, "resource not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		pkghttp.WriteMethodNotAllowed(w)
	})

	// Rate limiting config for credential endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/register", authHandler.Register)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/refresh", authHandler.RefreshToken)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager, accounts))

		r.Get("/accounts/me", accountHandler.Me)

		r.Get("/boards", boardHandler.List)
		r.Post("/boards", boardHandler.Create)
		r.Get("/boards/pinned", boardHandler.ListPinned)
		r.Get("/boards/stats", boardHandler.Stats)
		r.Get("/boards/{id}", boardHandler.GetByID)
		r.Put("/boards/{id}", boardHandler.Update)
		r.Delete("/boards/{id}", boardHandler.Delete)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin))

			r.Put("/boards/{id}/pin", boardHandler.SetPinned)

			r.Get("/admin/accounts", accountHandler.List)
			r.Get("/admin/accounts/{id}", accountHandler.GetByID)
			r.Post("/admin/accounts/{id}/approve", accountHandler.Approve)
			r.Post("/admin/accounts/{id}/deactivate", accountHandler.Deactivate)
			r.Post("/admin/accounts/{id}/unlock", accountHandler.Unlock)
		})
	})
}
