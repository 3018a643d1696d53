package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tasmanlabs/orgauth/internal/auth/service"
	"github.com/tasmanlabs/orgauth/pkg/httpx"
)

// InviteHandler serves invitation issue and redemption.
type InviteHandler struct {
	InviteService *service.InviteService
}

// HandleInvite serves POST /v1/organizations/{id}/invite.
func (h *InviteHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}

	token, err := h.InviteService.Invite(r.Context(), r.PathValue("id"), httpx.UserIDFromCtx(r.Context()), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrganizationNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "organization not found")
		case errors.Is(err, service.ErrNotAMember):
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "only members may invite")
		case errors.Is(err, service.ErrAlreadyMember):
			httpx.WriteError(w, http.StatusConflict, "already_member", "this email already belongs to a member")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not issue invitation")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"invite_token": token})
}

// HandleAccept serves GET /v1/organizations/accept-invite?token=...
// Unauthenticated: redemption may provision the invitee's account.
func (h *InviteHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "token query parameter is required")
		return
	}

	user, org, err := h.InviteService.Accept(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrganizationNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "the organization no longer exists")
		case errors.Is(err, service.ErrAlreadyMember):
			httpx.WriteError(w, http.StatusConflict, "already_member", "this invitation was already redeemed")
		case errors.Is(err, service.ErrInvalidInvitation):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_invitation", "invitation is invalid or expired")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not redeem invitation")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, struct {
		User         userResponse `json:"user"`
		Organization orgResponse  `json:"organization"`
	}{
		User:         newUserResponse(user),
		Organization: newOrgResponse(org),
	})
}
