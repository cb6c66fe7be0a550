package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/theaccountant/accountant/internal/model"
	"github.com/theaccountant/accountant/internal/store"
)

// Category handles CRUD for income categories.
type Category struct {
	categories *store.Categories
}

func NewCategory(categories *store.Categories) *Category {
	return &Category{categories: categories}
}

func (h *Category) Register(r chi.Router) {
	r.Post("/category/add", h.add)
	r.Get("/category/find_all", h.findAll)
	r.Get("/category/find/{id}", h.find)
	r.Put("/category/update/{id}", h.update)
	r.Delete("/category/delete/{id}", h.delete)
	r.Delete("/category/delete_all", h.deleteAll)
}

type categoryRequest struct {
	Name      string  `json:"name"`
	Colour    string  `json:"colour"`
	Threshold float64 `json:"threshold"`
}

func (h *Category) add(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	category := &model.Category{
		Name:      req.Name,
		Colour:    req.Colour,
		Threshold: req.Threshold,
		Username:  p.Username,
	}
	if err := h.categories.Create(r.Context(), category); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *Category) findAll(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	categories, err := h.categories.FindAllForUser(r.Context(), p.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Category) find(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	category, err := h.categories.FindByID(r.Context(), chi.URLParam(r, "id"), p.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *Category) update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category := &model.Category{
		ID:        chi.URLParam(r, "id"),
		Name:      req.Name,
		Colour:    req.Colour,
		Threshold: req.Threshold,
		Username:  p.Username,
	}
	if err := h.categories.Update(r.Context(), category); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *Category) delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "id"), p.Username); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Category) deleteAll(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.categories.DeleteAllForUser(r.Context(), p.Username); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
