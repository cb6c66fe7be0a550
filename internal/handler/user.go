package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	accountant "github.com/theaccountant/accountant"
	"github.com/theaccountant/accountant/internal/model"
	"github.com/theaccountant/accountant/internal/store"
	"github.com/theaccountant/accountant/middleware"
	"github.com/theaccountant/accountant/password"
)

// User handles account registration, login/logout, and account deletion.
type User struct {
	users      *store.Users
	categories *store.Categories
	incomes    *store.Incomes
	loans      *store.Loans
	auth       *accountant.Service
	hasher     *password.Argon2
	logger     *slog.Logger
}

func NewUser(users *store.Users, categories *store.Categories, incomes *store.Incomes, loans *store.Loans, auth *accountant.Service, hasher *password.Argon2, logger *slog.Logger) *User {
	return &User{
		users:      users,
		categories: categories,
		incomes:    incomes,
		loans:      loans,
		auth:       auth,
		hasher:     hasher,
		logger:     logger,
	}
}

// Register mounts the user routes on r.
func (h *User) Register(r chi.Router) {
	r.Post("/user/add", h.add)
	r.Post("/user/login", h.login)
	r.Post("/user/logout", h.logout)
	r.Get("/user/description", h.description)
	r.Delete("/user/delete", h.delete)
}

type addUserRequest struct {
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Password        string     `json:"password"`
	FirstName       string     `json:"firstName"`
	Surname         string     `json:"surname"`
	Birthdate       *time.Time `json:"birthdate,omitempty"`
	DefaultCurrency string     `json:"defaultCurrency,omitempty"`
}

type userResponse struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"firstName,omitempty"`
	Surname         string `json:"surname,omitempty"`
	Activated       bool   `json:"activated"`
	DefaultCurrency string `json:"defaultCurrency"`
}

func (h *User) add(w http.ResponseWriter, r *http.Request) {
	var req addUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email, and password are required")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unusable password")
		return
	}

	currency := req.DefaultCurrency
	if currency == "" {
		currency = "USD"
	}

	user := &model.AppUser{
		Username:        req.Username,
		Email:           req.Email,
		PasswordHash:    hash,
		FirstName:       req.FirstName,
		Surname:         req.Surname,
		Birthdate:       req.Birthdate,
		DefaultCurrency: currency,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("user registered", "username", user.Username)
	writeJSON(w, http.StatusOK, userResponse{
		Username:        user.Username,
		Email:           user.Email,
		FirstName:       user.FirstName,
		Surname:         user.Surname,
		Activated:       user.Activated,
		DefaultCurrency: user.DefaultCurrency,
	})
}

type loginResponse struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *User) login(w http.ResponseWriter, r *http.Request) {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		writeError(w, http.StatusBadRequest, "missing Authorization header")
		return
	}

	clientIP := middleware.ClientIP(r)
	if p, ok := accountant.PrincipalFromContext(r.Context()); ok {
		clientIP = p.ClientIP
	}

	sess, err := h.auth.Login(r.Context(), authorization, clientIP)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Username:  sess.Username,
		ExpiresAt: time.Unix(sess.ExpiresAt, 0).UTC(),
	})
}

func (h *User) logout(w http.ResponseWriter, r *http.Request) {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		writeError(w, http.StatusBadRequest, "missing Authorization header")
		return
	}

	if err := h.auth.Logout(r.Context(), authorization); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *User) description(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":        "accountant",
		"description": "personal finance tracking backend",
	})
}

// delete removes the account, all owned entities, and every active
// session for the user.
func (h *User) delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if err := h.incomes.DeleteAllForUser(ctx, p.Username); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.categories.DeleteAllForUser(ctx, p.Username); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.loans.DeleteAllForUser(ctx, p.Username); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.users.Delete(ctx, p.Username); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.auth.InvalidateAllForUser(ctx, p.Username); err != nil {
		h.logger.Error("session cleanup after account deletion failed",
			"username", p.Username, "error", err)
	}

	h.logger.Info("account deleted", "username", p.Username)
	w.WriteHeader(http.StatusNoContent)
}
