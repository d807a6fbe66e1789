package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ftpadmin/internal/delivery/http/response"
	"ftpadmin/internal/delivery/http/validator"
	"ftpadmin/internal/domain/entity"
	"ftpadmin/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserUsecase struct {
	mock.Mock
}

func (m *mockUserUsecase) CreateUser(ctx context.Context, input *usecase.CreateUserInput) (*usecase.CreateUserOutput, error) {
	args := m.Called(ctx, input)
	if out := args.Get(0); out != nil {
		return out.(*usecase.CreateUserOutput), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserUsecase) UpdateUser(ctx context.Context, input *usecase.UpdateUserInput) (*entity.User, error) {
	args := m.Called(ctx, input)
	if user := args.Get(0); user != nil {
		return user.(*entity.User), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserUsecase) RemoveUser(ctx context.Context, id int64) (*usecase.RemoveUserOutput, error) {
	args := m.Called(ctx, id)
	if out := args.Get(0); out != nil {
		return out.(*usecase.RemoveUserOutput), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserUsecase) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*entity.User), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserUsecase) ListUsers(ctx context.Context) ([]*entity.User, error) {
	args := m.Called(ctx)
	if users := args.Get(0); users != nil {
		return users.([]*entity.User), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserUsecase) Stats(ctx context.Context) (*usecase.UserStats, error) {
	args := m.Called(ctx)
	if stats := args.Get(0); stats != nil {
		return stats.(*usecase.UserStats), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserUsecase) SuggestPassword() (string, error) {
	args := m.Called()

	return args.String(0), args.Error(1)
}

func newEchoContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = validator.New()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func TestUserHandler_Create(t *testing.T) {
	uc := new(mockUserUsecase)
	uc.On("CreateUser", mock.Anything, mock.MatchedBy(func(input *usecase.CreateUserInput) bool {
		return input.Login == "al-ice" && input.PrimaryGID == 10
	})).Return(&usecase.CreateUserOutput{
		ID:      7,
		UID:     2000,
		Login:   "al-ice",
		HomeDir: "/srv/ftp/eng/al-ice",
	}, nil)

	h := NewUserHandler(uc)
	c, rec := newEchoContext(t, http.MethodPost, "/users",
		`{"login":"al-ice","password":"longpassword","gid":10}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, `User "al-ice" created successfully.`, resp.Message)
	assert.Empty(t, resp.Warnings)
}

func TestUserHandler_CreateWithWarnings(t *testing.T) {
	uc := new(mockUserUsecase)
	uc.On("CreateUser", mock.Anything, mock.Anything).Return(&usecase.CreateUserOutput{
		ID:    7,
		Login: "alice",
		Warnings: []string{
			"Adding additional group failed; at least one of the additional groups had an invalid GID.",
		},
	}, nil)

	h := NewUserHandler(uc)
	c, rec := newEchoContext(t, http.MethodPost, "/users",
		`{"login":"alice","password":"longpassword","gid":10,"supplementaryGids":[-1]}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success, "partial linking failure is still a success")
	assert.Len(t, resp.Warnings, 1)
}

func TestUserHandler_GetRejectsBadID(t *testing.T) {
	h := NewUserHandler(new(mockUserUsecase))
	c, rec := newEchoContext(t, http.MethodGet, "/users/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_Delete(t *testing.T) {
	uc := new(mockUserUsecase)
	uc.On("RemoveUser", mock.Anything, int64(7)).Return(&usecase.RemoveUserOutput{Login: "alice"}, nil)

	h := NewUserHandler(uc)
	c, rec := newEchoContext(t, http.MethodDelete, "/users/7", "")
	c.SetParamNames("id")
	c.SetParamValues("7")

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, `User "alice" removed successfully.`, resp.Message)
}

func TestUserHandler_SuggestPassword(t *testing.T) {
	uc := new(mockUserUsecase)
	uc.On("SuggestPassword").Return("Zx9qLm2TpW4r", nil)

	h := NewUserHandler(uc)
	c, rec := newEchoContext(t, http.MethodGet, "/users/password-suggestion", "")

	require.NoError(t, h.SuggestPassword(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Zx9qLm2TpW4r")
}
