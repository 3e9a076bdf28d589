package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminChecker_CaseInsensitive(t *testing.T) {
	checker := NewAdminChecker("Admin@Example.com")

	assert.True(t, checker.IsAdmin("admin@example.com"))
	assert.True(t, checker.IsAdmin("ADMIN@EXAMPLE.COM"))
	assert.True(t, checker.IsAdmin("Admin@Example.com"))
	assert.False(t, checker.IsAdmin("other@example.com"))
	assert.False(t, checker.IsAdmin(""))
}

func TestAdminChecker_FailsClosed(t *testing.T) {
	checker := NewAdminChecker("")

	assert.False(t, checker.IsAdmin("admin@example.com"))
	assert.False(t, checker.IsAdmin(""))
}
