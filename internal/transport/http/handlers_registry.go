package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"docket/internal/identity"
	"docket/pkg/requestcontext"
)

type roleAssignmentRequest struct {
	Address string `json:"address"`
	Role    string `json:"role"`
}

func (h Handlers) grantRole(w http.ResponseWriter, r *http.Request) {
	var body roleAssignmentRequest
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	role, err := identity.ParseRole(body.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	assignment, err := h.Registry.GrantRole(r.Context(), requestcontext.Actor(r.Context()), body.Address, role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

func (h Handlers) revokeRole(w http.ResponseWriter, r *http.Request) {
	var body roleAssignmentRequest
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	role, err := identity.ParseRole(body.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	assignment, err := h.Registry.RevokeRole(r.Context(), requestcontext.Actor(r.Context()), body.Address, role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

func (h Handlers) listRoleAssignments(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	list, err := h.Registry.ListAssignments(r.Context(), requestcontext.Actor(r.Context()), address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
