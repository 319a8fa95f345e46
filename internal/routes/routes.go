package routes

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/seanmccall/folio/internal/auth"
	"github.com/seanmccall/folio/internal/handlers"
	"github.com/seanmccall/folio/internal/middleware"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth           *handlers.AuthHandler
	OAuth          *handlers.OAuthHandler
	Profile        *handlers.ProfileHandler
	Security       *handlers.SecurityHandler
	Contact        *handlers.ContactHandler
	Certifications *handlers.CertificationHandler
	Experiences    *handlers.ExperienceHandler
	ServiceItems   *handlers.ServiceItemHandler
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	sessionManager *auth.SessionManager,
	refresher auth.TokenRefresher,
	csrfManager *auth.CSRFTokenManager,
	cookies auth.CookieConfig,
	cookieMaxAge int,
	logger *slog.Logger,
) {
	authRateLimit := middleware.DefaultAuthRateLimit()
	contactRateLimit := middleware.DefaultContactRateLimit()

	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(authRateLimit)).Post("/auth/login", h.Auth.Login)
	router.With(middleware.RateLimitByIP(authRateLimit)).Get("/auth/oauth/google", h.OAuth.Begin)
	router.Get("/auth/oauth/google/callback", h.OAuth.Callback)
	router.Post("/auth/logout", h.Auth.Logout)

	router.With(middleware.RateLimitByIP(contactRateLimit)).Post("/contact", h.Contact.Submit)

	// Published portfolio content is world-readable
	router.Get("/certifications", h.Certifications.List)
	router.Get("/certifications/{id}", h.Certifications.Get)
	router.Get("/experiences", h.Experiences.List)
	router.Get("/experiences/{id}", h.Experiences.Get)
	router.Get("/services", h.ServiceItems.List)
	router.Get("/services/{id}", h.ServiceItems.Get)

	// Authenticated routes
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(sessionManager, refresher, cookies, cookieMaxAge))

		r.Get("/auth/session", h.Auth.Session)
		r.Get("/auth/csrf", h.Auth.CSRFToken)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Use(middleware.CSRFProtection(csrfManager, logger))

			r.Route("/admin", func(r chi.Router) {
				r.Get("/profile", h.Profile.Get)
				r.Put("/profile", h.Profile.Update)
				r.Put("/profile/password", h.Profile.ChangePassword)

				r.Get("/security/logins", h.Security.LoginHistory)
				r.Post("/security/mfa/setup", h.Security.SetupMFA)
				r.Post("/security/mfa/enable", h.Security.EnableMFA)
				r.Post("/security/mfa/disable", h.Security.DisableMFA)

				r.Route("/certifications", func(r chi.Router) {
					r.Post("/", h.Certifications.Create)
					r.Put("/order", h.Certifications.Reorder)
					r.Put("/{id}", h.Certifications.Update)
					r.Delete("/{id}", h.Certifications.Delete)
					r.Post("/{id}/move", h.Certifications.Move)
				})

				r.Route("/experiences", func(r chi.Router) {
					r.Post("/", h.Experiences.Create)
					r.Put("/order", h.Experiences.Reorder)
					r.Put("/{id}", h.Experiences.Update)
					r.Delete("/{id}", h.Experiences.Delete)
					r.Post("/{id}/move", h.Experiences.Move)
				})

				r.Route("/services", func(r chi.Router) {
					r.Post("/", h.ServiceItems.Create)
					r.Put("/order", h.ServiceItems.Reorder)
					r.Put("/{id}", h.ServiceItems.Update)
					r.Delete("/{id}", h.ServiceItems.Delete)
					r.Post("/{id}/move", h.ServiceItems.Move)
				})
			})
		})
	})
}
