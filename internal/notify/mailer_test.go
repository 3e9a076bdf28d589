package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolregistry/server/internal/config"
)

func TestCodeBody(t *testing.T) {
	body := CodeBody("483920")

	assert.Contains(t, body, "483920", "the code must appear in the message")
	assert.Contains(t, body, "10 minutes", "the message must state the expiry")
}

func TestNewSMTPMailer_Validation(t *testing.T) {
	_, err := NewSMTPMailer(&config.Config{})
	assert.Error(t, err, "missing host must be rejected")

	_, err = NewSMTPMailer(&config.Config{SMTPHost: "smtp.example.com"})
	assert.Error(t, err, "missing from address must be rejected")

	mailer, err := NewSMTPMailer(&config.Config{
		SMTPHost:    "smtp.example.com",
		SMTPPort:    587,
		SMTPFrom:    "noreply@example.com",
		SMTPTimeout: 15 * time.Second,
	})
	require.NoError(t, err)
	assert.NotNil(t, mailer)
}
