package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the HTTP routes.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.LogRequests)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/verify-otp", h.VerifyOTP).Methods(http.MethodPost)
	r.HandleFunc("/resend-otp", h.ResendOTP).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.Handle("/me", h.RequireAuth(http.HandlerFunc(h.Me))).Methods(http.MethodGet)

	return r
}
