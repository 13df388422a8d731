package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewSubscriptionToken returns a fresh 32-character lowercase-hex token:
// a random 128-bit identifier with the dashes stripped, so it stays
// URL-safe with no ambiguous characters. Uniqueness is left to the token
// table's primary key; a collision surfaces as an insert error.
func NewSubscriptionToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
