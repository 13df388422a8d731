package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/lettervine/lettervine/internal/domain"
	internal_errors "github.com/lettervine/lettervine/internal/errors"
	"github.com/lettervine/lettervine/internal/logger"
)

type SubscriptionService interface {
	Signup(ctx context.Context, name domain.SubscriberName, email domain.SubscriberEmail) error
	Confirm(ctx context.Context, token domain.SubscriptionToken) error
}

type SubscriptionStorage interface {
	CreateSubscriber(ctx context.Context, name domain.SubscriberName, email domain.SubscriberEmail) (domain.SubscriberID, domain.SubscriptionToken, error)
	SubscriberIDByToken(ctx context.Context, token domain.SubscriptionToken) (domain.SubscriberID, error)
	ConfirmSubscriber(ctx context.Context, id domain.SubscriberID) error
}

type Mailer interface {
	Send(ctx context.Context, email domain.OutgoingEmail) error
}

type Subscription struct {
	storage    SubscriptionStorage
	mailer     Mailer
	appBaseURL string
}

func NewSubscription(storage SubscriptionStorage, mailer Mailer, appBaseURL string) *Subscription {
	return &Subscription{
		storage:    storage,
		mailer:     mailer,
		appBaseURL: strings.TrimSuffix(appBaseURL, "/"),
	}
}

// Signup persists a pending subscriber plus confirmation token, then sends
// the welcome email carrying the confirmation link. The insert is committed
// before the send: if the email fails the subscriber stays persisted as
// pending with no resend path, and the signup reports failure. At-least-once
// persisted, best-effort notified.
func (s *Subscription) Signup(ctx context.Context, name domain.SubscriberName, email domain.SubscriberEmail) error {
	log := logger.FromContext(ctx)

	log.Info("inserting new subscriber", "email", email.String())
	id, token, err := s.storage.CreateSubscriber(ctx, name, email)
	if err != nil {
		return err
	}

	log.Info("sending welcome email", "subscriber_id", id)
	if err := s.sendWelcomeEmail(ctx, email, token); err != nil {
		log.Warn("welcome email failed, subscriber left pending with no resend path",
			"subscriber_id", id,
			"error", err)
		return err
	}
	return nil
}

func (s *Subscription) sendWelcomeEmail(ctx context.Context, email domain.SubscriberEmail, token domain.SubscriptionToken) error {
	confirmationLink := fmt.Sprintf("%s/subscriptions/confirm?token=%s", s.appBaseURL, token)

	return s.mailer.Send(ctx, domain.OutgoingEmail{
		To:       email,
		Subject:  "Welcome!",
		HTMLBody: fmt.Sprintf(`Welcome to our newsletter! Please confirm your subscription by clicking <a href="%s">here</a>.`, confirmationLink),
		TextBody: fmt.Sprintf("Welcome to our newsletter! Please confirm your subscription by clicking %s.", confirmationLink),
	})
}

// Confirm resolves the token and marks its subscriber confirmed. Confirming
// twice is harmless; an unresolvable token yields 401. Tokens are not
// invalidated after use: re-clicking a confirmation link only repeats an
// idempotent update.
func (s *Subscription) Confirm(ctx context.Context, token domain.SubscriptionToken) error {
	id, err := s.storage.SubscriberIDByToken(ctx, token)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return &internal_errors.ErrorWithStatusCode{Message: "Unknown token", StatusCode: http.StatusUnauthorized}
		}
		return err
	}

	return s.storage.ConfirmSubscriber(ctx, id)
}
