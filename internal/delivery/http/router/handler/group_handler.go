package handler

import (
	"fmt"
	"net/http"

	"ftpadmin/internal/delivery/http/response"
	"ftpadmin/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// GroupHandler holds dependencies for FTP group handlers.
type GroupHandler struct {
	uc usecase.GroupUsecase
}

// NewGroupHandler is the constructor for GroupHandler, injected by Fx.
func NewGroupHandler(uc usecase.GroupUsecase) *GroupHandler {
	return &GroupHandler{uc: uc}
}

type createGroupRequest struct {
	Name    string   `json:"name"`
	GID     int64    `json:"gid"`
	Members []string `json:"members"`
}

type renumberGroupRequest struct {
	GID int64 `json:"gid" validate:"required"`
}

type addMemberRequest struct {
	Login string `json:"login" validate:"required"`
}

// Create handles group creation.
func (h *GroupHandler) Create(c echo.Context) error {
	var req createGroupRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid group creation input")
	}

	output, err := h.uc.CreateGroup(c.Request().Context(), &usecase.CreateGroupInput{
		Name:    req.Name,
		GID:     req.GID,
		Members: req.Members,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output, fmt.Sprintf("Group %q created successfully.", output.Name))
}

// List handles listing all groups, ascending by gid.
func (h *GroupHandler) List(c echo.Context) error {
	groups, err := h.uc.ListGroups(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, groups, "")
}

// Get handles group retrieval by gid.
func (h *GroupHandler) Get(c echo.Context) error {
	gid, err := parseID(c.Param("gid"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid gid")
	}

	group, err := h.uc.GetGroup(c.Request().Context(), gid)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, group, "")
}

// Renumber moves the group to a new gid, repointing member accounts.
func (h *GroupHandler) Renumber(c echo.Context) error {
	gid, err := parseID(c.Param("gid"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid gid")
	}

	var req renumberGroupRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid renumber input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.RenumberGroup(c.Request().Context(), gid, req.GID); err != nil {
		return errors.WithStack(err)
	}

	message := fmt.Sprintf("Group %d renumbered to %d successfully.", gid, req.GID)

	return response.Success(c, http.StatusOK, map[string]int64{"gid": req.GID}, message)
}

// Delete handles group removal.
func (h *GroupHandler) Delete(c echo.Context) error {
	gid, err := parseID(c.Param("gid"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid gid")
	}

	if err := h.uc.DeleteGroup(c.Request().Context(), gid); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, fmt.Sprintf("Group %d removed successfully.", gid))
}

// AddMember links an account into the group's members column.
func (h *GroupHandler) AddMember(c echo.Context) error {
	gid, err := parseID(c.Param("gid"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid gid")
	}

	var req addMemberRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid member input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.AddMember(c.Request().Context(), req.Login, gid); err != nil {
		return errors.WithStack(err)
	}

	message := fmt.Sprintf("User %q added to group %d successfully.", req.Login, gid)

	return response.Success(c, http.StatusOK, nil, message)
}

// RemoveMember drops an account from the group's members column.
func (h *GroupHandler) RemoveMember(c echo.Context) error {
	gid, err := parseID(c.Param("gid"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid gid")
	}

	login := c.Param("login")
	if login == "" {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login")
	}

	if err := h.uc.RemoveMember(c.Request().Context(), login, gid); err != nil {
		return errors.WithStack(err)
	}

	message := fmt.Sprintf("User %q removed from group %d successfully.", login, gid)

	return response.Success(c, http.StatusOK, nil, message)
}

// Stats handles the group counters.
func (h *GroupHandler) Stats(c echo.Context) error {
	stats, err := h.uc.Stats(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, stats, "")
}
