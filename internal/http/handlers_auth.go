package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"trackexpense/internal/auth"
	"trackexpense/internal/core"
	"trackexpense/internal/storage"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := core.User{Email: strings.TrimSpace(req.Email)}
	if err := user.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrWeakPassword) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Password hashing failed", "error", err)
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	user.PasswordHash = hash

	// The UNIQUE constraint on email is the real duplicate check; a prior
	// lookup gives a cleaner status without racing it.
	if _, err := s.store.Users.GetByEmail(r.Context(), user.Email); err == nil {
		respondError(w, http.StatusConflict, "email already registered")
		return
	}

	saved, err := s.store.Users.Add(r.Context(), user)
	if err != nil {
		slog.ErrorContext(r.Context(), "User creation failed", "error", err)
		respondError(w, http.StatusConflict, "email already registered")
		return
	}

	// New users start with the default category set so reports work out of
	// the box. Registration still succeeds if seeding fails.
	if err := s.store.Categories.SeedDefaults(r.Context(), saved.ID); err != nil {
		slog.ErrorContext(r.Context(), "Category seeding failed", "user_id", saved.ID, "error", err)
	}

	token, err := s.tokens.Issue(saved)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token issuance failed", "user_id", saved.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "registration succeeded but login failed, please log in")
		return
	}

	slog.InfoContext(r.Context(), "User registered", "user_id", saved.ID)
	respondJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.Users.GetByEmail(r.Context(), strings.TrimSpace(req.Email))
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "User lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		slog.WarnContext(r.Context(), "Failed login attempt", "user_id", user.ID)
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token issuance failed", "user_id", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	respondJSON(w, http.StatusOK, tokenResponse{Token: token})
}
