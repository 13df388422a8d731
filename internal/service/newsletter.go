package service

import (
	"context"

	"github.com/microcosm-cc/bluemonday"

	"github.com/lettervine/lettervine/internal/domain"
	"github.com/lettervine/lettervine/internal/logger"
)

type NewsletterService interface {
	Publish(ctx context.Context, letter domain.Newsletter) error
}

type NewsletterStorage interface {
	ConfirmedSubscriberEmails(ctx context.Context) ([]string, error)
}

type Newsletter struct {
	storage NewsletterStorage
	mailer  Mailer
	policy  *bluemonday.Policy
}

func NewNewsletter(storage NewsletterStorage, mailer Mailer) *Newsletter {
	return &Newsletter{
		storage: storage,
		mailer:  mailer,
		policy:  bluemonday.UGCPolicy(),
	}
}

// Publish fans the newsletter out to every confirmed subscriber. A single
// recipient's failure never aborts the batch: it is logged and the loop
// moves on. Only the initial fetch can fail the call.
func (n *Newsletter) Publish(ctx context.Context, letter domain.Newsletter) error {
	log := logger.FromContext(ctx)
	log.Info("publishing newsletter", "title", letter.Title)

	// Operator-supplied HTML goes out to every inbox; strip anything the
	// UGC policy would not allow.
	safeHTML := n.policy.Sanitize(letter.HTMLContent)

	emails, err := n.storage.ConfirmedSubscriberEmails(ctx)
	if err != nil {
		return err
	}
	log.Info("fetched confirmed subscribers", "count", len(emails))

	for _, email := range emails {
		n.tryToSendTo(ctx, email, letter.Title, safeHTML, letter.TextContent)
	}
	return nil
}

func (n *Newsletter) tryToSendTo(ctx context.Context, rawEmail, subject, htmlBody, textBody string) {
	log := logger.FromContext(ctx)

	to, err := domain.NewSubscriberEmail(rawEmail)
	if err != nil {
		log.Error("skipping subscriber with invalid stored email", "email", rawEmail, "error", err)
		return
	}

	err = n.mailer.Send(ctx, domain.OutgoingEmail{
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		log.Error("failed to send newsletter", "email", rawEmail, "error", err)
		return
	}
	log.Info("newsletter sent", "email", rawEmail)
}
