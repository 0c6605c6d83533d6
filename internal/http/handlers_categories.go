package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trackexpense/internal/core"
	"trackexpense/internal/storage"
)

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type categoryVM struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func newCategoryVM(c core.Category) categoryVM {
	return categoryVM{ID: c.ID, Name: c.Name, Description: c.Description}
}

func (s *Server) ownedCategory(w http.ResponseWriter, r *http.Request, id string) (core.Category, bool) {
	category, err := s.store.Categories.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "category not found")
		return core.Category{}, false
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Category lookup failed", "category_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return core.Category{}, false
	}
	if category.UserID != callerID(r) {
		slog.WarnContext(r.Context(), "Caller tried to access foreign category",
			"category_id", id, "user_id", callerID(r))
		respondError(w, http.StatusNotFound, "category not found")
		return core.Category{}, false
	}
	return category, true
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.Categories.GetForUser(r.Context(), callerID(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Category listing failed", "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	vms := make([]categoryVM, 0, len(categories))
	for _, c := range categories {
		vms = append(vms, newCategoryVM(c))
	}
	respondJSON(w, http.StatusOK, vms)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category := core.Category{
		UserID:      callerID(r),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := category.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.store.Categories.Add(r.Context(), category)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category creation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	respondJSON(w, http.StatusCreated, newCategoryVM(saved))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := s.ownedCategory(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCategoryVM(category))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := s.ownedCategory(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category.Name = req.Name
	category.Description = req.Description
	if err := category.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.Categories.Update(r.Context(), category); err != nil {
		slog.ErrorContext(r.Context(), "Category update failed", "category_id", category.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	respondJSON(w, http.StatusOK, newCategoryVM(category))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := s.ownedCategory(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := s.store.Categories.Remove(r.Context(), category.ID); err != nil {
		slog.ErrorContext(r.Context(), "Category deletion failed", "category_id", category.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
