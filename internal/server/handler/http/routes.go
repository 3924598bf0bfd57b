package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/wishkeep/wishkeep/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// wish-list API. It applies JSON content-type enforcement, request
// logging, and bearer-token authentication, and mounts the login,
// registry, RSVP, and watch endpoints under /api.
//
// Routes:
//
//	POST /api/login                        → authHandler.Login (public)
//	GET  /api/users                        → userHandler.List
//	GET  /api/items                        → itemHandler.List
//	GET  /api/event                        → eventHandler.Details
//	GET  /api/watch                        → watchHandler.Watch
//	POST /api/items/{id}/claim             → itemHandler.Claim
//	POST /api/items/{id}/return            → itemHandler.Return
//	POST /api/users/{username}/rename      → userHandler.Rename (self or admin)
//	POST /api/rsvp/confirm|decline|cancel  → eventHandler
//	POST /api/users, DELETE /api/users/{username},
//	POST /api/items, PUT/DELETE /api/items/{id},
//	PUT  /api/event                        → admin only
func NewRouter(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	itemHandler *ItemHandler,
	eventHandler *EventHandler,
	watchHandler *WatchHandler,
	tokenSecret string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Enforce token authentication (login itself excepted)
	r.Use(middleware.TokenAuth(tokenSecret))

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		// Public endpoint
		r.Post("/login", authHandler.Login)

		// Signed-in users
		r.Get("/users", userHandler.List)
		r.Get("/items", itemHandler.List)
		r.Get("/event", eventHandler.Details)
		r.Get("/watch", watchHandler.Watch)
		r.Post("/items/{id}/claim", itemHandler.Claim)
		r.Post("/items/{id}/return", itemHandler.Return)
		r.Post("/users/{username}/rename", userHandler.Rename)
		r.Post("/rsvp/confirm", eventHandler.Confirm)
		r.Post("/rsvp/decline", eventHandler.Decline)
		r.Post("/rsvp/cancel", eventHandler.Cancel)

		// Admin group
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/users", userHandler.Create)
			r.Delete("/users/{username}", userHandler.Delete)
			r.Post("/items", itemHandler.Create)
			r.Put("/items/{id}", itemHandler.Update)
			r.Delete("/items/{id}", itemHandler.Delete)
			r.Put("/event", eventHandler.SetDetails)
		})
	})

	return r
}
