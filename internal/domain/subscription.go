package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lettervine/lettervine/internal/errors"
)

type (
	SubscriberID      = string
	SubscriptionToken = string
)

type SubscriptionStatus string

const (
	StatusPendingConfirmation SubscriptionStatus = "pending_confirmation"
	StatusConfirmed           SubscriptionStatus = "confirmed"
)

func (s SubscriptionStatus) Valid() bool {
	return s == StatusPendingConfirmation || s == StatusConfirmed
}

const (
	nameMinLen  = 4
	nameMaxLen  = 50
	emailMaxLen = 50
)

// Characters that must never appear in a display name.
const forbiddenNameChars = `/()"<>\{}`

// SubscriberName is a display name that passed validation at construction.
// The constructor is the only validation gate; holders never re-validate.
type SubscriberName struct {
	value string
}

func NewSubscriberName(raw string) (SubscriberName, error) {
	name := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(name); n < nameMinLen || n > nameMaxLen {
		return SubscriberName{}, &errors.ValidationError{
			Message: fmt.Sprintf("name must be between %d and %d characters", nameMinLen, nameMaxLen),
		}
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return SubscriberName{}, &errors.ValidationError{
			Message: fmt.Sprintf("name cannot contain any of: %s", forbiddenNameChars),
		}
	}
	return SubscriberName{value: name}, nil
}

func (n SubscriberName) String() string {
	return n.value
}

// SubscriberEmail is a validated, lowercased email address.
type SubscriberEmail struct {
	value string
}

func NewSubscriberEmail(raw string) (SubscriberEmail, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return SubscriberEmail{}, &errors.ValidationError{Message: "email is required"}
	}
	if utf8.RuneCountInString(email) > emailMaxLen {
		return SubscriberEmail{}, &errors.ValidationError{
			Message: fmt.Sprintf("email must be at most %d characters", emailMaxLen),
		}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return SubscriberEmail{}, &errors.ValidationError{Message: "email is not a valid address"}
	}
	return SubscriberEmail{value: strings.ToLower(email)}, nil
}

func (e SubscriberEmail) String() string {
	return e.value
}

type Subscriber struct {
	ID           SubscriberID
	Name         string
	Email        string
	Status       SubscriptionStatus
	SubscribedAt time.Time
}

// OutgoingEmail is a single email-send intent handed to the mail gateway.
type OutgoingEmail struct {
	To       SubscriberEmail
	Subject  string
	HTMLBody string
	TextBody string
}

type Newsletter struct {
	Title       string
	TextContent string
	HTMLContent string
}
