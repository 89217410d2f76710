package usecase

import (
	"storefront/internal/data/repository"
	"storefront/pkg/mailer"
	"storefront/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	PasswordReset PasswordResetService
}

func NewService(repo *repository.Repository, mail mailer.Mailer, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		PasswordReset: NewPasswordResetService(repo.User, repo, mail, config, log),
	}
}
