package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers the auth routes and middleware stack.
// Centralizing routes here ensures consistent auth and error behavior across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/auth/v1", func(r chi.Router) {
		r.Post("/login", handler.login)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Post("/logout", handler.logout)
			r.Post("/password/change", handler.changePassword)
			r.Get("/session", handler.sessionInfo)
		})
	})

	return r
}
