package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emotify/accounts/internal/common"
	"github.com/emotify/accounts/internal/logging"
	"github.com/emotify/accounts/internal/server/auth"
	"github.com/emotify/accounts/internal/server/models"
)

type fakeRegistrations struct {
	registerErr error
	verifyErr   error
	resendErr   error

	gotUsername string
	gotEmail    string
	gotCode     string
}

func (f *fakeRegistrations) Register(_ context.Context, username, email, _ string) error {
	f.gotUsername = username
	f.gotEmail = email
	return f.registerErr
}

func (f *fakeRegistrations) VerifyOTP(_ context.Context, email, code string) error {
	f.gotEmail = email
	f.gotCode = code
	return f.verifyErr
}

func (f *fakeRegistrations) ResendOTP(_ context.Context, email string) error {
	f.gotEmail = email
	return f.resendErr
}

type fakeUsers struct {
	user  *models.User
	token string
	err   error
}

func (f *fakeUsers) Login(_ context.Context, _, _ string) (*models.User, string, error) {
	return f.user, f.token, f.err
}

var testSecret = []byte("test-secret")

func newTestHandler(reg RegistrationService, users UserService) *Handler {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewHandler(reg, users, logger, testSecret)
}

func doRequest(t *testing.T, h *Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rr, req)
	return rr
}

func decodeMsg(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Msg string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Msg
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "accepted",
			body:       `{"username":"ada","email":"ada@example.com","password":"secret1"}`,
			wantStatus: http.StatusOK,
			wantMsg:    "OTP sent to your email.",
		},
		{
			name:       "email taken",
			body:       `{"username":"ada","email":"ada@example.com","password":"secret1"}`,
			serviceErr: common.ErrEmailTaken,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Email already in use",
		},
		{
			name:       "mail delivery failed",
			body:       `{"username":"ada","email":"ada@example.com","password":"secret1"}`,
			serviceErr: common.ErrNotificationFailed,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed to send code. Please try again.",
		},
		{
			name:       "malformed body",
			body:       `{"username":`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &fakeRegistrations{registerErr: tt.serviceErr}
			rr := doRequest(t, newTestHandler(reg, &fakeUsers{}), http.MethodPost, "/register", tt.body, nil)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantMsg, decodeMsg(t, rr))
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}
}

func TestRegisterValidationMessagePassthrough(t *testing.T) {
	reg := &fakeRegistrations{registerErr: fmt.Errorf("%w: valid email required", common.ErrValidation)}
	rr := doRequest(t, newTestHandler(reg, &fakeUsers{}), http.MethodPost, "/register",
		`{"username":"ada","email":"nope","password":"secret1"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeMsg(t, rr), "valid email required")
}

func TestVerifyOTP(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "account created",
			wantStatus: http.StatusCreated,
			wantMsg:    "Account created successfully!",
		},
		{
			name:       "wrong or expired code",
			serviceErr: common.ErrOTPInvalidOrExpired,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid or expired OTP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &fakeRegistrations{verifyErr: tt.serviceErr}
			rr := doRequest(t, newTestHandler(reg, &fakeUsers{}), http.MethodPost, "/verify-otp",
				`{"email":"ada@example.com","otp":"123456"}`, nil)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantMsg, decodeMsg(t, rr))
			assert.Equal(t, "ada@example.com", reg.gotEmail)
		})
	}
}

func TestResendOTP(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "new code sent",
			wantStatus: http.StatusOK,
			wantMsg:    "New code sent successfully.",
		},
		{
			name:       "registration window expired",
			serviceErr: common.ErrRegistrationExpired,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Session expired. Please sign up again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &fakeRegistrations{resendErr: tt.serviceErr}
			rr := doRequest(t, newTestHandler(reg, &fakeUsers{}), http.MethodPost, "/resend-otp",
				`{"email":"ada@example.com"}`, nil)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantMsg, decodeMsg(t, rr))
		})
	}
}

func TestLogin(t *testing.T) {
	t.Run("success returns user and token", func(t *testing.T) {
		users := &fakeUsers{
			user:  &models.User{ID: "u-1", Username: "ada", Email: "ada@example.com"},
			token: "signed.jwt.token",
		}
		rr := doRequest(t, newTestHandler(&fakeRegistrations{}, users), http.MethodPost, "/login",
			`{"email":"ada@example.com","password":"secret1"}`, nil)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			User  models.User `json:"user"`
			Token string      `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "signed.jwt.token", resp.Token)
		assert.Equal(t, "ada@example.com", resp.User.Email)
		assert.NotContains(t, rr.Body.String(), "password_hash")
	})

	t.Run("bad credentials return generic 401", func(t *testing.T) {
		users := &fakeUsers{err: common.ErrInvalidCredentials}
		rr := doRequest(t, newTestHandler(&fakeRegistrations{}, users), http.MethodPost, "/login",
			`{"email":"ada@example.com","password":"wrong"}`, nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid credentials", decodeMsg(t, rr))
	})

	t.Run("internal error returns 500", func(t *testing.T) {
		users := &fakeUsers{err: common.ErrorInternal}
		rr := doRequest(t, newTestHandler(&fakeRegistrations{}, users), http.MethodPost, "/login",
			`{"email":"ada@example.com","password":"secret1"}`, nil)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Internal Server Error", decodeMsg(t, rr))
	})
}

func TestMe(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		rr := doRequest(t, newTestHandler(&fakeRegistrations{}, &fakeUsers{}), http.MethodGet, "/me", "", nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Access denied. No token provided.")
	})

	t.Run("malformed token", func(t *testing.T) {
		rr := doRequest(t, newTestHandler(&fakeRegistrations{}, &fakeUsers{}), http.MethodGet, "/me", "",
			map[string]string{"Authorization": "Bearer not-a-token"})

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid or expired token")
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := auth.GenerateToken("u-1", "ada@example.com", "ada", testSecret, -time.Minute)
		require.NoError(t, err)

		rr := doRequest(t, newTestHandler(&fakeRegistrations{}, &fakeUsers{}), http.MethodGet, "/me", "",
			map[string]string{"Authorization": "Bearer " + token})

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("valid token returns claims", func(t *testing.T) {
		token, err := auth.GenerateToken("u-1", "ada@example.com", "ada", testSecret, time.Hour)
		require.NoError(t, err)

		rr := doRequest(t, newTestHandler(&fakeRegistrations{}, &fakeUsers{}), http.MethodGet, "/me", "",
			map[string]string{"Authorization": "Bearer " + token})

		require.Equal(t, http.StatusOK, rr.Code)

		var claims auth.Claims
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &claims))
		assert.Equal(t, "u-1", claims.UserID)
		assert.Equal(t, "ada@example.com", claims.Email)
		assert.Equal(t, "ada", claims.Username)
	})
}

func TestHealth(t *testing.T) {
	rr := doRequest(t, newTestHandler(&fakeRegistrations{}, &fakeUsers{}), http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}
