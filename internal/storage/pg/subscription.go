package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/lettervine/lettervine/internal/domain"
	internal_errors "github.com/lettervine/lettervine/internal/errors"
	"github.com/lettervine/lettervine/internal/utils"
)

const uniqueViolation = pq.ErrorCode("23505")

const writeTimeout = 5 * time.Second

// =========================================================================
// Public Methods (satisfy the service storage interfaces)
// =========================================================================

// CreateSubscriber inserts a new pending subscriber together with a fresh
// confirmation token in a single transaction: either both rows become
// visible or neither does. A duplicate email fails with ErrDuplicateEmail.
func (s *Storage) CreateSubscriber(ctx context.Context, name domain.SubscriberName, email domain.SubscriberEmail) (domain.SubscriberID, domain.SubscriptionToken, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	id := uuid.NewString()
	token := utils.NewSubscriptionToken()

	err := WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.insertSubscriber(tx, id, name, email); err != nil {
			return err
		}
		return s.insertToken(tx, token, id)
	})
	if err != nil {
		return "", "", err
	}
	return id, token, nil
}

// SubscriberIDByToken resolves a confirmation token to its subscriber id.
// Read-only, no side effect.
func (s *Storage) SubscriberIDByToken(ctx context.Context, token domain.SubscriptionToken) (domain.SubscriberID, error) {
	return s.subscriberIDByToken(s.db, token)
}

// ConfirmSubscriber flips the subscriber's status to confirmed. Confirming
// an already-confirmed subscriber is a no-op success.
func (s *Storage) ConfirmSubscriber(ctx context.Context, id domain.SubscriberID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.confirmSubscriber(tx, id)
	})
}

// ConfirmedSubscriberEmails returns the emails of all confirmed
// subscribers, in no significant order.
func (s *Storage) ConfirmedSubscriberEmails(ctx context.Context) ([]string, error) {
	return s.confirmedSubscriberEmails(s.db)
}

// Subscriber fetches a single subscriber by id.
func (s *Storage) Subscriber(ctx context.Context, id domain.SubscriberID) (domain.Subscriber, error) {
	return s.subscriber(s.db, id)
}

// =========================================================================
// Internal Methods (Core Database Logic)
// These methods accept a Querier and are transaction-agnostic.
// =========================================================================

func (s *Storage) insertSubscriber(q Querier, id domain.SubscriberID, name domain.SubscriberName, email domain.SubscriberEmail) error {
	_, err := q.Exec(`
        INSERT INTO subscribers(id, name, email, status, subscribed_at)
        VALUES($1, $2, $3, $4, $5)`,
		id, name.String(), email.String(), string(domain.StatusPendingConfirmation), time.Now().UTC(),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return internal_errors.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert subscriber: %w", err)
	}
	return nil
}

func (s *Storage) insertToken(q Querier, token domain.SubscriptionToken, id domain.SubscriberID) error {
	_, err := q.Exec(`
        INSERT INTO subscription_tokens(subscription_token, subscriber_id)
        VALUES($1, $2)`,
		token, id,
	)
	if err != nil {
		// Includes the (practically impossible) token collision: surfaced
		// as an insert failure, not retried.
		return fmt.Errorf("failed to insert subscription token: %w", err)
	}
	return nil
}

func (s *Storage) subscriberIDByToken(q Querier, token domain.SubscriptionToken) (domain.SubscriberID, error) {
	var id domain.SubscriberID
	err := q.QueryRow(
		"SELECT subscriber_id FROM subscription_tokens WHERE subscription_token = $1",
		token,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", &internal_errors.ErrorWithStatusCode{Message: "Token not found", StatusCode: http.StatusNotFound}
		}
		return "", fmt.Errorf("failed to query subscription token: %w", err)
	}
	return id, nil
}

func (s *Storage) confirmSubscriber(q Querier, id domain.SubscriberID) error {
	result, err := q.Exec(
		"UPDATE subscribers SET status = $1 WHERE id = $2",
		string(domain.StatusConfirmed), id,
	)
	if err != nil {
		return fmt.Errorf("failed to confirm subscriber: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for confirmation: %w", err)
	}
	if rowsAffected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Subscriber not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

func (s *Storage) confirmedSubscriberEmails(q Querier) ([]string, error) {
	rows, err := q.Query(
		"SELECT email FROM subscribers WHERE status = $1",
		string(domain.StatusConfirmed),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query confirmed subscribers: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber email: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate confirmed subscribers: %w", err)
	}
	return emails, nil
}

func (s *Storage) subscriber(q Querier, id domain.SubscriberID) (domain.Subscriber, error) {
	var sub domain.Subscriber
	var status string
	err := q.QueryRow(`
        SELECT id, name, email, status, (subscribed_at at time zone 'utc')
        FROM subscribers WHERE id = $1`,
		id,
	).Scan(&sub.ID, &sub.Name, &sub.Email, &status, &sub.SubscribedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Subscriber{}, &internal_errors.ErrorWithStatusCode{Message: "Subscriber not found", StatusCode: http.StatusNotFound}
		}
		return domain.Subscriber{}, fmt.Errorf("failed to query subscriber: %w", err)
	}
	sub.Status = domain.SubscriptionStatus(status)
	return sub, nil
}
