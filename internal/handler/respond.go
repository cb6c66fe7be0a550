// Package handler implements the JSON REST handlers in the original
// backend's URL dialect (/user/add, /income/find_all, ...). Handlers
// trust the request gate: they read the authenticated Principal from the
// request context and never re-check authorization.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	accountant "github.com/theaccountant/accountant"
	"github.com/theaccountant/accountant/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps the error taxonomy to HTTP statuses at the
// boundary: unknown user 404, credential/state problems 400, token
// collisions 409, store failures 503.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accountant.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, accountant.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "invalid credentials")
	case errors.Is(err, accountant.ErrAccountNotActivated):
		writeError(w, http.StatusBadRequest, "account not activated")
	case errors.Is(err, accountant.ErrSessionNotFound):
		writeError(w, http.StatusBadRequest, "no active session for token")
	case errors.Is(err, accountant.ErrSessionConflict):
		writeError(w, http.StatusConflict, "session token conflict")
	case errors.Is(err, store.ErrDuplicateUser):
		writeError(w, http.StatusConflict, "username or email already registered")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, accountant.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// principal returns the gate-attached identity, rejecting requests that
// somehow arrived without one. The gate guarantees a Principal on every
// forwarded request, so a miss here means a wiring bug, not a client
// error.
func principal(w http.ResponseWriter, r *http.Request) (accountant.Principal, bool) {
	p, ok := accountant.PrincipalFromContext(r.Context())
	if !ok || p.Anonymous() {
		w.WriteHeader(http.StatusUnauthorized)
		return accountant.Principal{}, false
	}
	return p, true
}
