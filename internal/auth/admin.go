package auth

import "strings"

// AdminChecker decides whether an authenticated email holds admin rights.
// A single admin address is configured at startup; comparison is
// case-insensitive. With no address configured every check fails closed.
type AdminChecker struct {
	adminEmail string
}

// NewAdminChecker creates an AdminChecker for the configured admin address.
func NewAdminChecker(adminEmail string) *AdminChecker {
	return &AdminChecker{adminEmail: strings.ToLower(strings.TrimSpace(adminEmail))}
}

// IsAdmin reports whether email is the configured administrator.
func (c *AdminChecker) IsAdmin(email string) bool {
	if c.adminEmail == "" {
		return false
	}
	return strings.ToLower(email) == c.adminEmail
}
