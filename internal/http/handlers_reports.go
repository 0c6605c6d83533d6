package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trackexpense/internal/storage"
)

type rangedReportRequest struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	AccountID string    `json:"accountId"`
	NItems    int       `json:"nItems"`
}

// resolveReportScope checks the optional account filter for a report.
// An unknown account id silently widens the scope to the whole user; an
// account owned by someone else is a 404. The empty return means user scope.
func (s *Server) resolveReportScope(w http.ResponseWriter, r *http.Request, accountID string) (string, bool) {
	if strings.TrimSpace(accountID) == "" {
		return "", true
	}

	account, err := s.store.Accounts.Get(r.Context(), accountID)
	if errors.Is(err, storage.ErrNotFound) {
		slog.WarnContext(r.Context(), "Report requested for unknown account, using user scope",
			"account_id", accountID)
		return "", true
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Account lookup failed", "account_id", accountID, "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return "", false
	}
	if account.UserID != callerID(r) {
		slog.WarnContext(r.Context(), "Caller requested report for foreign account",
			"account_id", accountID, "user_id", callerID(r))
		respondError(w, http.StatusNotFound, "account not found")
		return "", false
	}
	return accountID, true
}

// parseWindow reads a positive integer query parameter with a default.
func parseWindow(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}

func (s *Server) handleExpensesPerCategories(w http.ResponseWriter, r *http.Request) {
	days, err := parseWindow(r, "days", 30)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if days < 1 {
		respondError(w, http.StatusBadRequest, "days must be at least 1")
		return
	}

	accountID, ok := s.resolveReportScope(w, r, r.URL.Query().Get("accountId"))
	if !ok {
		return
	}

	result, err := s.reports.ExpensesPerCategories(r.Context(), callerID(r), accountID, days)
	if err != nil {
		slog.ErrorContext(r.Context(), "Report failed",
			"report", "expensespercategories", "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleIncomeAndExpensesByMonth(w http.ResponseWriter, r *http.Request) {
	months, err := parseWindow(r, "months", 12)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if months < 1 {
		respondError(w, http.StatusBadRequest, "months must be at least 1")
		return
	}

	accountID, ok := s.resolveReportScope(w, r, r.URL.Query().Get("accountId"))
	if !ok {
		return
	}

	result, err := s.reports.IncomeAndExpensesByMonths(r.Context(), callerID(r), accountID, months)
	if err != nil {
		slog.ErrorContext(r.Context(), "Report failed",
			"report", "incomeandexpensesbymonth", "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleTopNExpenses(w http.ResponseWriter, r *http.Request) {
	var req rangedReportRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := s.now().UTC()
	if req.StartDate.After(now) {
		respondError(w, http.StatusBadRequest, "startDate cannot be later than now")
		return
	}
	if req.EndDate.After(now) {
		req.EndDate = now
	}
	if req.NItems < 0 {
		respondError(w, http.StatusBadRequest, "nItems cannot be negative")
		return
	}

	accountID, ok := s.resolveReportScope(w, r, req.AccountID)
	if !ok {
		return
	}

	result, err := s.reports.TopNExpenses(r.Context(), callerID(r), req.StartDate, req.EndDate, accountID, req.NItems)
	if err != nil {
		slog.ErrorContext(r.Context(), "Report failed",
			"report", "topnexpenses", "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	vms := make([]transactionVM, 0, len(result))
	for _, t := range result {
		vms = append(vms, newTransactionVM(t))
	}
	respondJSON(w, http.StatusOK, vms)
}

func (s *Server) handleCategoryExpensesAsPercents(w http.ResponseWriter, r *http.Request) {
	var req rangedReportRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := s.now().UTC()
	if req.StartDate.After(now) {
		respondError(w, http.StatusBadRequest, "startDate cannot be later than now")
		return
	}
	if req.EndDate.After(now) {
		req.EndDate = now
	}

	accountID, ok := s.resolveReportScope(w, r, req.AccountID)
	if !ok {
		return
	}

	result, err := s.reports.CategoryExpensesAsPercents(r.Context(), callerID(r), req.StartDate, req.EndDate, accountID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Report failed",
			"report", "categoryexpensesaspercents", "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
