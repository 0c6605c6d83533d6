package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trackexpense/internal/core"
	"trackexpense/internal/storage"
)

type transactionRequest struct {
	AccountID   string     `json:"accountId"`
	CategoryID  string     `json:"categoryId"`
	Amount      core.Money `json:"amount"`
	Type        string     `json:"type"`
	Date        time.Time  `json:"date"`
	Description string     `json:"description"`
}

type transactionVM struct {
	ID          string     `json:"id"`
	AccountID   string     `json:"accountId"`
	CategoryID  string     `json:"categoryId"`
	Amount      core.Money `json:"amount"`
	Type        string     `json:"type"`
	Date        time.Time  `json:"date"`
	Description string     `json:"description,omitempty"`
}

func newTransactionVM(t core.Transaction) transactionVM {
	return transactionVM{
		ID:          t.ID,
		AccountID:   t.AccountID,
		CategoryID:  t.CategoryID,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Date:        t.Date.UTC(),
		Description: t.Description,
	}
}

func (s *Server) ownedTransaction(w http.ResponseWriter, r *http.Request, id string) (core.Transaction, bool) {
	t, err := s.store.Transactions.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "transaction not found")
		return core.Transaction{}, false
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction lookup failed", "transaction_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return core.Transaction{}, false
	}
	if t.UserID != callerID(r) {
		slog.WarnContext(r.Context(), "Caller tried to access foreign transaction",
			"transaction_id", id, "user_id", callerID(r))
		respondError(w, http.StatusNotFound, "transaction not found")
		return core.Transaction{}, false
	}
	return t, true
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.store.Transactions.GetAllForUser(r.Context(), callerID(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction listing failed", "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	vms := make([]transactionVM, 0, len(transactions))
	for _, t := range transactions {
		vms = append(vms, newTransactionVM(t))
	}
	respondJSON(w, http.StatusOK, vms)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Both referenced entities must exist and belong to the caller.
	if _, ok := s.ownedAccount(w, r, req.AccountID); !ok {
		return
	}
	if _, ok := s.ownedCategory(w, r, req.CategoryID); !ok {
		return
	}

	t := core.Transaction{
		UserID:      callerID(r),
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Type:        core.TransactionType(req.Type),
		Date:        req.Date.UTC(),
		Description: req.Description,
	}

	if err := t.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.transactions.Create(r.Context(), t)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction creation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	respondJSON(w, http.StatusCreated, newTransactionVM(saved))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, ok := s.ownedTransaction(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newTransactionVM(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	t, ok := s.ownedTransaction(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, ok := s.ownedAccount(w, r, req.AccountID); !ok {
		return
	}
	if _, ok := s.ownedCategory(w, r, req.CategoryID); !ok {
		return
	}

	t.AccountID = req.AccountID
	t.CategoryID = req.CategoryID
	t.Amount = req.Amount
	t.Type = core.TransactionType(req.Type)
	t.Date = req.Date.UTC()
	t.Description = req.Description

	if err := t.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.transactions.Update(r.Context(), t); err != nil {
		slog.ErrorContext(r.Context(), "Transaction update failed", "transaction_id", t.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	respondJSON(w, http.StatusOK, newTransactionVM(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	t, ok := s.ownedTransaction(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := s.transactions.Remove(r.Context(), t.ID); err != nil {
		slog.ErrorContext(r.Context(), "Transaction deletion failed", "transaction_id", t.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
