package setup

import (
	"log/slog"

	"github.com/lettervine/lettervine/internal/config"
	"github.com/lettervine/lettervine/internal/handler"
	"github.com/lettervine/lettervine/internal/logger"
	"github.com/lettervine/lettervine/internal/mailer"
	"github.com/lettervine/lettervine/internal/service"
	"github.com/lettervine/lettervine/internal/storage/pg"
)

// Dependencies holds all initialized application dependencies.
type Dependencies struct {
	Storage *pg.Storage
	Handler *handler.Handler
	Logger  *slog.Logger
	Config  *config.Config
}

// SetupDependencies initializes everything the application needs.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	log := logger.New(cfg.Public.LogLevel, cfg.Public.LogJSON)
	slog.SetDefault(log)

	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	gateway, err := mailer.New(cfg.Public.Email, cfg.Private.EmailAPIKey, cfg.Private.EmailAPISecret)
	if err != nil {
		return nil, err
	}

	subscriptions := service.NewSubscription(storage, gateway, cfg.Public.AppBaseURL)
	newsletters := service.NewNewsletter(storage, gateway)

	h := handler.New(subscriptions, newsletters, storage, cfg)

	return &Dependencies{
		Storage: storage,
		Handler: h,
		Logger:  log,
		Config:  cfg,
	}, nil
}
