package handler

import (
	"context"

	"github.com/lettervine/lettervine/internal/config"
	"github.com/lettervine/lettervine/internal/service"
)

// HealthChecker reports whether the store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	subscriptions service.SubscriptionService
	newsletters   service.NewsletterService
	health        HealthChecker
	cfg           *config.Config
}

func New(subscriptions service.SubscriptionService, newsletters service.NewsletterService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{subscriptions, newsletters, health, cfg}
}
