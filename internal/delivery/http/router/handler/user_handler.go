// Package handler contains the HTTP handlers for the application.
package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"ftpadmin/internal/delivery/http/response"
	"ftpadmin/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UserHandler holds dependencies for FTP account handlers.
type UserHandler struct {
	uc usecase.UserUsecase
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(uc usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

// createUserRequest is the account creation payload. Policy checks (login
// format, uid bounds, password length) happen in the application layer so
// their messages stay aggregated; only the payload shape is checked here.
type createUserRequest struct {
	Login             string  `json:"login"`
	Password          string  `json:"password"`
	UID               int64   `json:"uid"`
	GID               int64   `json:"gid"`
	SupplementaryGIDs []int64 `json:"supplementaryGids"`
	Name              string  `json:"name"`
	Email             string  `json:"email" validate:"omitempty,email"`
	Company           string  `json:"company"`
	Comment           string  `json:"comment"`
	Disabled          bool    `json:"disabled"`
}

type updateUserRequest struct {
	Password string `json:"password"`
	UID      int64  `json:"uid"`
	GID      int64  `json:"gid"`
	HomeDir  string `json:"homedir"`
	Shell    string `json:"shell"`
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Company  string `json:"company"`
	Comment  string `json:"comment"`
	Disabled bool   `json:"disabled"`
}

// Create handles account creation.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid user creation input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.CreateUser(c.Request().Context(), &usecase.CreateUserInput{
		Login:             req.Login,
		Password:          req.Password,
		UID:               req.UID,
		PrimaryGID:        req.GID,
		SupplementaryGIDs: req.SupplementaryGIDs,
		Name:              req.Name,
		Email:             req.Email,
		Company:           req.Company,
		Comment:           req.Comment,
		Disabled:          req.Disabled,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	message := fmt.Sprintf("User %q created successfully.", output.Login)

	return response.SuccessWithWarnings(c, http.StatusCreated, output, message, output.Warnings)
}

// Get handles account retrieval by row id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid user id")
	}

	user, err := h.uc.GetUser(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, user, "")
}

// List handles listing all accounts.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.uc.ListUsers(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, users, "")
}

// Update handles rewriting an account's mutable fields.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid user id")
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid user update input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.uc.UpdateUser(c.Request().Context(), &usecase.UpdateUserInput{
		ID:         id,
		Password:   req.Password,
		UID:        req.UID,
		PrimaryGID: req.GID,
		HomeDir:    req.HomeDir,
		Shell:      req.Shell,
		Name:       req.Name,
		Email:      req.Email,
		Company:    req.Company,
		Comment:    req.Comment,
		Disabled:   req.Disabled,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, user, fmt.Sprintf("User %q updated successfully.", user.Login))
}

// Delete handles account removal, including the membership scrub.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid user id")
	}

	output, err := h.uc.RemoveUser(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	message := fmt.Sprintf("User %q removed successfully.", output.Login)

	return response.SuccessWithWarnings(c, http.StatusOK, output, message, output.Warnings)
}

// Stats handles the account counters.
func (h *UserHandler) Stats(c echo.Context) error {
	stats, err := h.uc.Stats(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, stats, "")
}

// SuggestPassword hands out a random password of the configured default
// length, for pre-filling creation forms.
func (h *UserHandler) SuggestPassword(c echo.Context) error {
	password, err := h.uc.SuggestPassword()
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"password": password}, "")
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid id %q", raw)
	}

	return id, nil
}
