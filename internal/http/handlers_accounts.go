package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trackexpense/internal/core"
	"trackexpense/internal/storage"
)

type accountRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type accountVM struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func newAccountVM(a core.Account) accountVM {
	return accountVM{ID: a.ID, Name: a.Name, Description: a.Description}
}

// ownedAccount loads an account and verifies it belongs to the caller.
// Foreign accounts answer 404, same as missing ones, so IDs don't leak.
func (s *Server) ownedAccount(w http.ResponseWriter, r *http.Request, id string) (core.Account, bool) {
	account, err := s.store.Accounts.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "account not found")
		return core.Account{}, false
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Account lookup failed", "account_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return core.Account{}, false
	}
	if account.UserID != callerID(r) {
		slog.WarnContext(r.Context(), "Caller tried to access foreign account",
			"account_id", id, "user_id", callerID(r))
		respondError(w, http.StatusNotFound, "account not found")
		return core.Account{}, false
	}
	return account, true
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.Accounts.GetForUser(r.Context(), callerID(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Account listing failed", "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	vms := make([]accountVM, 0, len(accounts))
	for _, a := range accounts {
		vms = append(vms, newAccountVM(a))
	}
	respondJSON(w, http.StatusOK, vms)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account := core.Account{
		UserID:      callerID(r),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := account.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.store.Accounts.Add(r.Context(), account)
	if err != nil {
		slog.ErrorContext(r.Context(), "Account creation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	respondJSON(w, http.StatusCreated, newAccountVM(saved))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := s.ownedAccount(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newAccountVM(account))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := s.ownedAccount(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account.Name = req.Name
	account.Description = req.Description
	if err := account.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.Accounts.Update(r.Context(), account); err != nil {
		slog.ErrorContext(r.Context(), "Account update failed", "account_id", account.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	respondJSON(w, http.StatusOK, newAccountVM(account))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := s.ownedAccount(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := s.store.Accounts.Remove(r.Context(), account.ID); err != nil {
		slog.ErrorContext(r.Context(), "Account deletion failed", "account_id", account.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
