package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolregistry/server/internal/auth"
	httprouter "github.com/schoolregistry/server/internal/http"
	"github.com/schoolregistry/server/internal/http/handlers"
	"github.com/schoolregistry/server/internal/model"
	"github.com/schoolregistry/server/internal/notify"
	"github.com/schoolregistry/server/internal/repo"
)

const (
	testSecret = "test-jwt-secret-at-least-32-characters-long"
	adminEmail = "admin@example.com"
)

type fixture struct {
	router     http.Handler
	otpRepo    *repo.MemoryOtpRepo
	schoolRepo *repo.MemorySchoolRepo
	sent       []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		otpRepo:    repo.NewMemoryOtpRepo(),
		schoolRepo: repo.NewMemorySchoolRepo(),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mailer := notify.SendFunc(func(ctx context.Context, to, code string) error {
		f.sent = append(f.sent, code)
		return nil
	})

	tokens := auth.NewTokenService(testSecret, 24*time.Hour)
	admin := auth.NewAdminChecker(adminEmail)
	authService := auth.NewService(f.otpRepo, repo.NewMemoryUserRepo(), tokens, admin, mailer, 10*time.Minute)

	authHandler := handlers.NewAuthHandler(authService, logger, 24*time.Hour, false)
	schoolsHandler := handlers.NewSchoolsHandler(f.schoolRepo, nil, logger)

	f.router = httprouter.NewRouter(logger, authHandler, schoolsHandler, tokens, admin)
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) postJSON(t *testing.T, path string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return f.do(t, req)
}

// login runs the full OTP flow for email and returns the session token.
func (f *fixture) login(t *testing.T, email string) string {
	t.Helper()

	rec := f.postJSON(t, "/api/auth/send-otp", map[string]string{"email": email})
	require.Equal(t, http.StatusOK, rec.Code, "send-otp failed: %s", rec.Body.String())
	require.NotEmpty(t, f.sent)
	code := f.sent[len(f.sent)-1]

	rec = f.postJSON(t, "/api/auth/verify-otp", map[string]string{"email": email, "otp": code})
	require.Equal(t, http.StatusOK, rec.Code, "verify-otp failed: %s", rec.Body.String())

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.SessionCookieName {
			return cookie.Value
		}
	}
	t.Fatal("no session cookie in verify-otp response")
	return ""
}

func TestSendOTP_InvalidEmail(t *testing.T) {
	f := newFixture(t)

	rec := f.postJSON(t, "/api/auth/send-otp", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.sent, "no mail for an invalid address")
}

func TestSendOTP_Success(t *testing.T) {
	f := newFixture(t)

	rec := f.postJSON(t, "/api/auth/send-otp", map[string]string{"email": "user@test.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user@test.com", body["email"])
	assert.NotEmpty(t, body["message"])
	assert.Len(t, f.sent, 1)
}

func TestVerifyOTP_SetsSessionCookie(t *testing.T) {
	f := newFixture(t)

	rec := f.postJSON(t, "/api/auth/send-otp", map[string]string{"email": "user@test.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	code := f.sent[len(f.sent)-1]

	rec = f.postJSON(t, "/api/auth/verify-otp", map[string]string{"email": "user@test.com", "otp": code})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Message string `json:"message"`
		User    struct {
			Email   string `json:"email"`
			IsAdmin bool   `json:"isAdmin"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user@test.com", body.User.Email)
	assert.False(t, body.User.IsAdmin)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, auth.SessionCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int((24 * time.Hour).Seconds()), cookie.MaxAge)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	f := newFixture(t)

	rec := f.postJSON(t, "/api/auth/send-otp", map[string]string{"email": "user@test.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	code := f.sent[len(f.sent)-1]

	wrong := "000000"
	if wrong == code {
		wrong = "999999"
	}
	rec = f.postJSON(t, "/api/auth/verify-otp", map[string]string{"email": "user@test.com", "otp": wrong})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheck_Anonymous(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/check", nil))
	require.Equal(t, http.StatusOK, rec.Code, "check never errors for missing sessions")

	var body struct {
		Authenticated bool            `json:"authenticated"`
		User          json.RawMessage `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Authenticated)
	assert.Equal(t, "null", string(body.User))
}

func TestCheck_InvalidTokenStillOK(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := f.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Authenticated bool `json:"authenticated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Authenticated)
}

func TestCheck_Authenticated(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, adminEmail)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := f.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Authenticated bool `json:"authenticated"`
		User          *struct {
			Email   string `json:"email"`
			IsAdmin bool   `json:"isAdmin"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Authenticated)
	require.NotNil(t, body.User)
	assert.Equal(t, adminEmail, body.User.Email)
	assert.True(t, body.User.IsAdmin)
}

func schoolForm(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"name":     "Springfield Elementary",
		"address":  "19 Plympton St",
		"city":     "Springfield",
		"state":    "OR",
		"contact":  "5551234567",
		"email_id": "office@springfield.example.com",
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestSchools_ListIsPublic(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/schools", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestSchools_CreateRequiresAuth(t *testing.T) {
	f := newFixture(t)

	body, contentType := schoolForm(t)
	req := httptest.NewRequest(http.MethodPost, "/api/schools", body)
	req.Header.Set("Content-Type", contentType)

	rec := f.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSchools_CreateAndList(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "user@test.com")

	body, contentType := schoolForm(t)
	req := httptest.NewRequest(http.MethodPost, "/api/schools", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := f.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, "create failed: %s", rec.Body.String())

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/schools", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var schools []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schools))
	require.Len(t, schools, 1)
	assert.Equal(t, "Springfield Elementary", schools[0].Name)
}

func TestSchools_CreateMissingFields(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "user@test.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Incomplete School"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/schools", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := f.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSchools_DeleteRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	// Anonymous: 401
	rec := f.do(t, httptest.NewRequest(http.MethodDelete, "/api/schools/1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Authenticated non-admin: 403
	token := f.login(t, "user@test.com")
	req := httptest.NewRequest(http.MethodDelete, "/api/schools/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = f.do(t, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSchools_DeleteAsAdmin(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, adminEmail)

	// Absent target: 404
	req := httptest.NewRequest(http.MethodDelete, "/api/schools/42", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := f.do(t, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Existing target: 200 and gone afterwards
	id, err := f.schoolRepo.Create(context.Background(), model.School{
		Name:    "Springfield Elementary",
		Address: "19 Plympton St",
		City:    "Springfield",
		State:   "OR",
		Contact: "5551234567",
		EmailID: "office@springfield.example.com",
	})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/schools/%d", id), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = f.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, "delete failed: %s", rec.Body.String())

	_, err = f.schoolRepo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
