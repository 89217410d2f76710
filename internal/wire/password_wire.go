package wire

import (
	"storefront/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePasswordReset(r chi.Router, h *adaptor.PasswordResetHandler) {
	r.Route("/api/password", func(r chi.Router) {
		r.Post("/forgot", h.Forgot)
		r.Post("/reset", h.Reset)
	})
}
