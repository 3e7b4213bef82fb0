// Package api exposes the JSON HTTP surface of the accounts service and maps
// service errors onto status codes and user-facing messages. Nothing below
// the services leaks implementation detail past this layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/emotify/accounts/internal/common"
	"github.com/emotify/accounts/internal/logging"
	"github.com/emotify/accounts/internal/server/models"
)

// RegistrationService is the slice of the registration engine the handlers use.
type RegistrationService interface {
	Register(ctx context.Context, username, email, password string) error
	VerifyOTP(ctx context.Context, email, code string) error
	ResendOTP(ctx context.Context, email string) error
}

// UserService is the slice of the login service the handlers use.
type UserService interface {
	Login(ctx context.Context, email, password string) (*models.User, string, error)
}

// Handler bundles the services and settings the HTTP layer needs.
type Handler struct {
	registrations RegistrationService
	users         UserService
	logger        logging.Logger
	secretKey     []byte
}

// NewHandler constructs the HTTP handler set.
func NewHandler(r RegistrationService, u UserService, l logging.Logger, secretKey []byte) *Handler {
	return &Handler{registrations: r, users: u, logger: l, secretKey: secretKey}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type resendRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type msgResponse struct {
	Msg string `json:"msg"`
}

type loginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register handles POST /register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.registrations.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgResponse{Msg: "OTP sent to your email."})
}

// VerifyOTP handles POST /verify-otp.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.registrations.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msgResponse{Msg: "Account created successfully!"})
}

// ResendOTP handles POST /resend-otp.
func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.registrations.ResendOTP(r.Context(), req.Email); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgResponse{Msg: "New code sent successfully."})
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{User: user, Token: token})
}

// Me handles GET /me, returning the verified token claims attached by the
// auth middleware.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Access denied. No token provided."})
		return
	}
	writeJSON(w, http.StatusOK, claims)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, msgResponse{Msg: "Invalid request body"})
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeJSON(w, http.StatusBadRequest, msgResponse{Msg: err.Error()})
	case errors.Is(err, common.ErrEmailTaken):
		writeJSON(w, http.StatusBadRequest, msgResponse{Msg: "Email already in use"})
	case errors.Is(err, common.ErrOTPInvalidOrExpired):
		writeJSON(w, http.StatusBadRequest, msgResponse{Msg: "Invalid or expired OTP"})
	case errors.Is(err, common.ErrRegistrationExpired):
		writeJSON(w, http.StatusBadRequest, msgResponse{Msg: "Session expired. Please sign up again."})
	case errors.Is(err, common.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, msgResponse{Msg: "Invalid credentials"})
	case errors.Is(err, common.ErrNotificationFailed):
		writeJSON(w, http.StatusInternalServerError, msgResponse{Msg: "Failed to send code. Please try again."})
	default:
		h.logger.Error(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, msgResponse{Msg: "Internal Server Error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
