package model

import (
	"time"
)

// OtpVerification is a one-time login code issued for an email address.
// Multiple rows per email may coexist; only the most recently created
// unconsumed, unexpired one verifies.
type OtpVerification struct {
	ID        int64
	Email     string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
	Consumed  bool
}

// AuthenticatedUser records that an email address has completed OTP login
// at least once. Never deleted by the auth flow.
type AuthenticatedUser struct {
	ID        int64
	Email     string
	LastLogin time.Time
}

// Identity is the authenticated principal attached to a request.
type Identity struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// School is a registered school entry.
type School struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Contact string `json:"contact"`
	EmailID string `json:"email_id"`
	Image   string `json:"image"`
}
