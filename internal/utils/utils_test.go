package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSubscriptionToken(t *testing.T) {
	hex32 := regexp.MustCompile(`^[0-9a-f]{32}$`)

	t.Run("is 32 lowercase hex characters", func(t *testing.T) {
		token := NewSubscriptionToken()
		assert.Regexp(t, hex32, token)
	})

	t.Run("successive tokens differ", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			token := NewSubscriptionToken()
			assert.False(t, seen[token], "token %q generated twice", token)
			seen[token] = true
		}
	})
}
