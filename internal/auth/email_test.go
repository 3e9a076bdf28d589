package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	valid := []string{
		"user@test.com",
		"first.last@example.co.uk",
		"user+tag@example.com",
		"UPPER@EXAMPLE.COM",
	}
	for _, email := range valid {
		assert.True(t, ValidEmail(email), "expected %q to be valid", email)
	}

	invalid := []string{
		"",
		"not-an-email",
		"missing-domain@",
		"@missing-local.com",
		"no-dot-in-domain@example",
		"two@@example.com",
		"spaces in@example.com",
		"user@exam ple.com",
	}
	for _, email := range invalid {
		assert.False(t, ValidEmail(email), "expected %q to be invalid", email)
	}
}
