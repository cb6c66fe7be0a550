package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/theaccountant/accountant/internal/model"
	"github.com/theaccountant/accountant/internal/store"
)

// Income handles CRUD for income entries. On create and update the
// amount is converted into the owner's default currency through the
// CurrencyConverter collaborator.
type Income struct {
	incomes   *store.Incomes
	users     *store.Users
	converter CurrencyConverter
	logger    *slog.Logger
}

func NewIncome(incomes *store.Incomes, users *store.Users, converter CurrencyConverter, logger *slog.Logger) *Income {
	return &Income{
		incomes:   incomes,
		users:     users,
		converter: converter,
		logger:    logger,
	}
}

func (h *Income) Register(r chi.Router) {
	r.Post("/income/add", h.add)
	r.Get("/income/find_all", h.findAll)
	r.Get("/income/find/{id}", h.find)
	r.Put("/income/update/{id}", h.update)
	r.Delete("/income/delete/{id}", h.delete)
	r.Delete("/income/delete_all", h.deleteAll)
}

type incomeRequest struct {
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	Frequency   string  `json:"frequency"`
	StartDay    int     `json:"startDay"`
	StartMonth  int     `json:"startMonth"`
}

// convertedAmount fills the default-currency amount for the owner. A
// conversion failure degrades to zero rather than rejecting the entry;
// the original stored amounts even when the converter was unreachable.
func (h *Income) convertedAmount(r *http.Request, username, currency string, amount float64) float64 {
	user, err := h.users.FindByUsername(r.Context(), username)
	if err != nil {
		h.logger.Error("owner lookup for conversion failed", "username", username, "error", err)
		return 0
	}
	converted, err := h.converter.Convert(currency, user.DefaultCurrency, amount)
	if err != nil {
		h.logger.Debug("currency conversion failed", "from", currency,
			"to", user.DefaultCurrency, "error", err)
		return 0
	}
	return converted
}

func (h *Income) add(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req incomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Currency == "" {
		writeError(w, http.StatusBadRequest, "name and currency are required")
		return
	}

	income := &model.Income{
		Name:                  req.Name,
		Amount:                req.Amount,
		Currency:              req.Currency,
		DefaultCurrencyAmount: h.convertedAmount(r, p.Username, req.Currency, req.Amount),
		Description:           req.Description,
		Frequency:             req.Frequency,
		StartDay:              req.StartDay,
		StartMonth:            req.StartMonth,
		Username:              p.Username,
	}
	if err := h.incomes.Create(r.Context(), income); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, income)
}

func (h *Income) findAll(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	incomes, err := h.incomes.FindAllForUser(r.Context(), p.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, incomes)
}

func (h *Income) find(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	income, err := h.incomes.FindByID(r.Context(), chi.URLParam(r, "id"), p.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, income)
}

func (h *Income) update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req incomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	income := &model.Income{
		ID:                    chi.URLParam(r, "id"),
		Name:                  req.Name,
		Amount:                req.Amount,
		Currency:              req.Currency,
		DefaultCurrencyAmount: h.convertedAmount(r, p.Username, req.Currency, req.Amount),
		Description:           req.Description,
		Frequency:             req.Frequency,
		StartDay:              req.StartDay,
		StartMonth:            req.StartMonth,
		Username:              p.Username,
	}
	if err := h.incomes.Update(r.Context(), income); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, income)
}

func (h *Income) delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.incomes.Delete(r.Context(), chi.URLParam(r, "id"), p.Username); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Income) deleteAll(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.incomes.DeleteAllForUser(r.Context(), p.Username); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
