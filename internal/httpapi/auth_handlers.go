package httpapi

import (
	"errors"
	"net/http"
	"time"

	"metrodocs.org/internal/audit"
	"metrodocs.org/internal/auth"
	"metrodocs.org/internal/obs"
)

type signupRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string    `json:"id"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email"`
	Role  auth.Role `json:"role"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		obs.ObserveAuth("signup", "bad_request")
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	session, err := a.auth.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		a.handleAuthError(w, r, "signup", err)
		return
	}

	obs.ObserveAuth("signup", "ok")
	_ = audit.LogEvent(r.Context(), "auth.signup", map[string]any{
		"account_id": session.Account.ID,
		"email":      session.Account.Email,
		"role":       session.Account.Role,
	})

	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		obs.ObserveAuth("login", "bad_request")
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	session, err := a.auth.Login(r.Context(), auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		a.handleAuthError(w, r, "login", err)
		return
	}

	obs.ObserveAuth("login", "ok")
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"account_id": session.Account.ID,
		"email":      session.Account.Email,
	})

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		unauthorized(w, r, "authentication required")
		return
	}
	account, err := a.auth.Account(r.Context(), claims.AccountID())
	if err != nil {
		// The subject vanished after the token was minted; the token no
		// longer names a live account.
		if errors.Is(err, auth.ErrAccountNotFound) {
			unauthorized(w, r, "invalid token")
			return
		}
		a.handleAuthError(w, r, "me", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(account))
}

func (a *API) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	accounts, err := a.auth.Accounts(r.Context())
	if err != nil {
		a.handleAuthError(w, r, "accounts", err)
		return
	}
	out := make([]userResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, toUserResponse(account))
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": out})
}

// handleAuthError maps the flow error taxonomy onto stable status codes.
// Messages stay generic: hashing parameters and store error text never
// reach clients.
func (a *API) handleAuthError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		obs.ObserveAuth(op, "validation_error")
		writeFieldError(w, r, http.StatusBadRequest, verr.Field, verr.Reason)
	case errors.Is(err, auth.ErrDuplicateEmail):
		obs.ObserveAuth(op, "duplicate_email")
		writeFieldError(w, r, http.StatusBadRequest, "email", "email already registered")
	case errors.Is(err, auth.ErrInvalidCredentials):
		obs.ObserveAuth(op, "invalid_credentials")
		_ = audit.LogEvent(r.Context(), "auth.login.denied", nil)
		writeError(w, r, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, auth.ErrStoreUnavailable):
		obs.ObserveAuth(op, "store_unavailable")
		writeError(w, r, http.StatusServiceUnavailable, "account store unavailable")
	default:
		obs.ObserveAuth(op, "error")
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func toSessionResponse(session auth.Session) sessionResponse {
	return sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      toUserResponse(session.Account),
	}
}

func toUserResponse(account auth.Account) userResponse {
	return userResponse{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
		Role:  account.Role,
	}
}
