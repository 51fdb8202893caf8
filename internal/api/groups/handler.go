// Package groups serves the group and membership endpoints.
package groups

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Vasu1712/hushgroup-backend/internal/api"
	"github.com/Vasu1712/hushgroup-backend/internal/apperr"
	groupsvc "github.com/Vasu1712/hushgroup-backend/internal/groups"
	"github.com/Vasu1712/hushgroup-backend/internal/identity"
	"github.com/Vasu1712/hushgroup-backend/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/samber/lo"
)

var validate = validator.New()

// GroupHandler holds the dependencies for the group endpoints.
type GroupHandler struct {
	Service   *groupsvc.Service
	Directory identity.Directory
}

type createGroupRequest struct {
	Name string `json:"name" validate:"required"`
}

type createGroupResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	InviteCode string   `json:"inviteCode"`
	Members    []string `json:"members"`
}

type joinGroupRequest struct {
	InviteCode string `json:"inviteCode" validate:"required"`
}

type joinGroupResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	InviteCode  string `json:"inviteCode"`
	MemberCount int    `json:"memberCount"`
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := api.DecodeJSON(w, r, dst); err != nil {
		return err
	}
	if err := validate.Struct(dst); err != nil {
		return apperr.Validation(fmt.Sprintf("missing required fields: %s", fieldNames(err)))
	}
	return nil
}

func fieldNames(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	return strings.Join(lo.Map(verrs, func(fe validator.FieldError, _ int) string { return fe.Field() }), ", ")
}

// CreateGroup handles POST /groups.
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var req createGroupRequest
	if err := decode(w, r, &req); err != nil {
		api.WriteError(w, r, err)
		return
	}

	group, err := h.Service.CreateGroup(r.Context(), req.Name, userID)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, createGroupResponse{
		ID:         group.ID,
		Name:       group.Name,
		InviteCode: group.InviteCode,
		Members:    group.Members,
	})
}

// JoinGroup handles POST /groups/join.
func (h *GroupHandler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var req joinGroupRequest
	if err := decode(w, r, &req); err != nil {
		api.WriteError(w, r, err)
		return
	}

	group, err := h.Service.JoinGroup(r.Context(), req.InviteCode, userID)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, joinGroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		InviteCode:  group.InviteCode,
		MemberCount: len(group.Members),
	})
}

// ListGroups handles GET /groups.
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	summaries, err := h.Service.ListGroupsForUser(r.Context(), userID)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, summaries)
}

// GetGroup handles GET /groups/{group-id}.
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	detail, err := h.Service.GetGroup(r.Context(), mux.Vars(r)["group-id"], userID)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, detail)
}

// Me handles GET /me: the caller's display name and group set.
func (h *GroupHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	user, err := h.Directory.User(r.Context(), userID)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, user)
}
