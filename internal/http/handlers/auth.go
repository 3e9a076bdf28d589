package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/schoolregistry/server/internal/auth"
	"github.com/schoolregistry/server/internal/middleware"
	"github.com/schoolregistry/server/internal/model"
)

// AuthHandler handles the OTP login endpoints.
type AuthHandler struct {
	authService  *auth.Service
	logger       *slog.Logger
	cookieTTL    time.Duration
	secureCookie bool
}

// NewAuthHandler creates a new auth handler. secureCookie should be true
// everywhere except local development.
func NewAuthHandler(authService *auth.Service, logger *slog.Logger, cookieTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		logger:       logger,
		cookieTTL:    cookieTTL,
		secureCookie: secureCookie,
	}
}

// sendOTPRequest is the request body for POST /api/auth/send-otp
type sendOTPRequest struct {
	Email string `json:"email"`
}

// verifyOTPRequest is the request body for POST /api/auth/verify-otp
type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// verifyOTPResponse is the JSON response for verify-otp
type verifyOTPResponse struct {
	Message string         `json:"message"`
	User    model.Identity `json:"user"`
}

// checkResponse is the JSON response for GET /api/auth/check
type checkResponse struct {
	Authenticated bool            `json:"authenticated"`
	User          *model.Identity `json:"user"`
}

// HandleSendOTP handles POST /api/auth/send-otp
func (h *AuthHandler) HandleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	err := h.authService.IssueCode(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmail):
			respondWithError(w, http.StatusBadRequest, "Please provide a valid email address")
		case errors.Is(err, auth.ErrDeliveryFailed):
			h.logger.Error("code delivery failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to send OTP email. Please try again.")
		default:
			h.logger.Error("code issuance failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to send OTP. Please try again.")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "OTP sent successfully to your email",
		"email":   req.Email,
	})
}

// HandleVerifyOTP handles POST /api/auth/verify-otp
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.OTP = strings.TrimSpace(req.OTP)

	if len(req.OTP) != auth.CodeLength {
		respondWithError(w, http.StatusBadRequest, "Please provide a valid 6-digit OTP")
		return
	}

	identity, token, err := h.authService.VerifyCode(r.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmail):
			respondWithError(w, http.StatusBadRequest, "Please provide a valid email address")
		case errors.Is(err, auth.ErrInvalidCode):
			respondWithError(w, http.StatusBadRequest, "Invalid or expired OTP. Please request a new one.")
		default:
			h.logger.Error("code verification failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to verify OTP. Please try again.")
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, verifyOTPResponse{
		Message: "Login successful",
		User:    identity,
	})
}

// HandleCheck handles GET /api/auth/check. Always 200: a missing or
// invalid session is a normal condition here, not a failure.
func (h *AuthHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, checkResponse{Authenticated: false, User: nil})
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{Authenticated: true, User: &identity})
}
