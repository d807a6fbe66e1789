package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	domainerrors "ftpadmin/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handleError(t *testing.T, err error) (*httptest.ResponseRecorder, domainerrors.Response) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	m := NewErrorMiddleware(slog.New(slog.DiscardHandler))
	m.HandleHTTPError(err, c)

	var resp domainerrors.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return rec, resp
}

func TestHandleHTTPError_ValidationErrors(t *testing.T) {
	verrs := domainerrors.NewValidationErrors()
	verrs.Addf("Invalid UID; must be a positive integer.")
	verrs.Addf("Password is too short; minimum length is %d characters.", 8)

	rec, resp := handleError(t, verrs)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)

	details, ok := resp.Error.Details.([]any)
	require.True(t, ok)
	assert.Len(t, details, 2)
}

func TestHandleHTTPError_AppError(t *testing.T) {
	rec, resp := handleError(t, domainerrors.ErrUserNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "USER_NOT_FOUND", resp.Error.Code)
}

func TestHandleHTTPError_WrappedAppError(t *testing.T) {
	err := errors.Wrap(domainerrors.ErrGIDTaken, "renumber group 10")

	rec, resp := handleError(t, err)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "GID_TAKEN", resp.Error.Code)
}

func TestHandleHTTPError_UnknownErrorStaysGeneric(t *testing.T) {
	rec, resp := handleError(t, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error.", resp.Message)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5", "raw detail must not leak to the caller")
}
