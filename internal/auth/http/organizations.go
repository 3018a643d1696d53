package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tasmanlabs/orgauth/internal/auth/domain"
	"github.com/tasmanlabs/orgauth/internal/auth/service"
	"github.com/tasmanlabs/orgauth/pkg/httpx"
)

// OrgHandler serves the /v1/organizations endpoints.
type OrgHandler struct {
	OrgService *service.OrgService
}

type orgResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	MemberIDs   []string  `json:"member_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newOrgResponse(o domain.Organization) orgResponse {
	members := o.MemberIDs
	if members == nil {
		members = []string{}
	}
	return orgResponse{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		CreatedBy:   o.CreatedBy,
		MemberIDs:   members,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func writeOrgError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrOrganizationNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "organization not found")
	case errors.Is(err, service.ErrDuplicateOrganization):
		httpx.WriteError(w, http.StatusConflict, "duplicate_organization", "an organization with this name already exists")
	case errors.Is(err, service.ErrNotOrganizationOwner):
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "only the creator may do this")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "operation failed")
	}
}

// HandleCreate serves POST /v1/organizations.
func (h *OrgHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	org, err := h.OrgService.Create(r.Context(), httpx.UserIDFromCtx(r.Context()), req.Name, req.Description)
	if err != nil {
		writeOrgError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, newOrgResponse(org))
}

// HandleList serves GET /v1/organizations.
func (h *OrgHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.OrgService.ListForUser(r.Context(), httpx.UserIDFromCtx(r.Context()))
	if err != nil {
		writeOrgError(w, err)
		return
	}

	out := make([]orgResponse, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, newOrgResponse(o))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet serves GET /v1/organizations/{id}.
func (h *OrgHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	org, err := h.OrgService.Get(r.Context(), r.PathValue("id"), httpx.UserIDFromCtx(r.Context()))
	if err != nil {
		writeOrgError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newOrgResponse(org))
}

// HandleUpdate serves PATCH /v1/organizations/{id}.
func (h *OrgHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	org, err := h.OrgService.Update(r.Context(), r.PathValue("id"), httpx.UserIDFromCtx(r.Context()), req.Name, req.Description)
	if err != nil {
		writeOrgError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newOrgResponse(org))
}

// HandleDelete serves DELETE /v1/organizations/{id}.
func (h *OrgHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.OrgService.Delete(r.Context(), r.PathValue("id"), httpx.UserIDFromCtx(r.Context())); err != nil {
		writeOrgError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
