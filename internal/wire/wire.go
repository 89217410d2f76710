package wire

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/adaptor"
	"storefront/internal/data/repository"
	"storefront/internal/usecase"
	"storefront/pkg/mailer"
	"storefront/pkg/middleware"
	"storefront/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the assembled HTTP surface.
type App struct {
	Router *chi.Mux
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Wiring builds services, handlers and the router.
func Wiring(repo *repository.Repository, mail mailer.Mailer, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, mail, config, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router: setupRouter(handler, repo, config, logger),
	}
}

func setupRouter(
	handler *adaptor.Handler,
	db Pinger,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(config.CORS.AllowedOrigins))

	wirePasswordReset(r, handler.PasswordReset)

	r.Get("/health", healthHandler(db, logger))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func healthHandler(db Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			utils.ResponseError(w, http.StatusServiceUnavailable, "storage_failure", "Database unreachable")
			return
		}
		utils.ResponseSuccess(w, "OK", nil)
	}
}
