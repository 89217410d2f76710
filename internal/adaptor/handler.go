package adaptor

import (
	"storefront/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	PasswordReset *PasswordResetHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		PasswordReset: NewPasswordResetHandler(service.PasswordReset, log),
	}
}
