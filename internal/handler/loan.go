package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/theaccountant/accountant/internal/model"
	"github.com/theaccountant/accountant/internal/store"
)

// Loan handles CRUD for loans, both receivable and payable.
type Loan struct {
	loans *store.Loans
}

func NewLoan(loans *store.Loans) *Loan {
	return &Loan{loans: loans}
}

func (h *Loan) Register(r chi.Router) {
	r.Post("/loan/add", h.add)
	r.Get("/loan/find_all", h.findAll)
	r.Get("/loan/find/{id}", h.find)
	r.Put("/loan/update/{id}", h.update)
	r.Delete("/loan/delete/{id}", h.delete)
	r.Delete("/loan/delete_all", h.deleteAll)
}

type loanRequest struct {
	Counterparty string     `json:"counterparty"`
	Amount       float64    `json:"amount"`
	Currency     string     `json:"currency"`
	Receiving    bool       `json:"receiving"`
	Active       bool       `json:"active"`
	UntilDate    *time.Time `json:"untilDate,omitempty"`
}

func (h *Loan) add(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req loanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Counterparty == "" || req.Currency == "" {
		writeError(w, http.StatusBadRequest, "counterparty and currency are required")
		return
	}

	loan := &model.Loan{
		Counterparty: req.Counterparty,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Receiving:    req.Receiving,
		Active:       req.Active,
		UntilDate:    req.UntilDate,
		Username:     p.Username,
	}
	if err := h.loans.Create(r.Context(), loan); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *Loan) findAll(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	loans, err := h.loans.FindAllForUser(r.Context(), p.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

func (h *Loan) find(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	loan, err := h.loans.FindByID(r.Context(), chi.URLParam(r, "id"), p.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *Loan) update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req loanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	loan := &model.Loan{
		ID:           chi.URLParam(r, "id"),
		Counterparty: req.Counterparty,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Receiving:    req.Receiving,
		Active:       req.Active,
		UntilDate:    req.UntilDate,
		Username:     p.Username,
	}
	if err := h.loans.Update(r.Context(), loan); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *Loan) delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.loans.Delete(r.Context(), chi.URLParam(r, "id"), p.Username); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Loan) deleteAll(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.loans.DeleteAllForUser(r.Context(), p.Username); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
