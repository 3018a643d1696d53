package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tasmanlabs/orgauth/internal/auth/domain"
	"github.com/tasmanlabs/orgauth/internal/auth/service"
	"github.com/tasmanlabs/orgauth/pkg/httpx"
)

// SessionHandler serves the /v1/auth endpoints.
type SessionHandler struct {
	SessionService *service.SessionService
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type userResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessLevel string `json:"access_level"`
}

type sessionResponse struct {
	User  userResponse  `json:"user"`
	Token tokenResponse `json:"token"`
}

func newTokenResponse(pair domain.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}
}

func newUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		AccessLevel: u.AccessLevel.String(),
	}
}

// HandleSignup serves POST /v1/auth/signup.
func (h *SessionHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		AccessLevel string `json:"access_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name, email and password are required")
		return
	}

	// Self-service signup defaults to the admin tier so the first account
	// of a fresh deployment can administer it. Invited accounts come in
	// through invitation redemption at the user tier.
	level := domain.AccessLevelAdmin
	if req.AccessLevel != "" {
		level = domain.AccessLevel(req.AccessLevel)
		if !level.Valid() {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown access_level")
			return
		}
	}

	user, err := h.SessionService.Signup(r.Context(), req.Name, req.Email, req.Password, level)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			httpx.WriteError(w, http.StatusConflict, "duplicate_email", "an account with this email already exists")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not create account")
		return
	}

	// No tokens on signup; the account signs in afterwards.
	httpx.WriteJSON(w, http.StatusCreated, newUserResponse(user))
}

// HandleSignin serves POST /v1/auth/signin.
func (h *SessionHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	user, pair, err := h.SessionService.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not sign in")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		User:  newUserResponse(user),
		Token: newTokenResponse(pair),
	})
}

// HandleRefresh serves POST /v1/auth/refresh.
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}

	pair, err := h.SessionService.RefreshSession(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRefreshToken), errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_refresh_token", "refresh token is invalid, expired or revoked")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not refresh session")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}

// HandleRevoke serves POST /v1/auth/revoke.
func (h *SessionHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}

	if err := h.SessionService.RevokeSession(r.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "no live session for this token")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not revoke session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
