package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"presto/internal/domain/models"
	userservice "presto/internal/services/user_service"
	"presto/internal/transport/http/dto"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) RegisterNewUser(ctx context.Context, input dto.UserRegisterInput) (uuid.UUID, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockUserService) Logout(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

type MockStoreService struct {
	mock.Mock
}

func (m *MockStoreService) GetStore(ctx context.Context, userID uuid.UUID) (models.Store, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Store), args.Error(1)
}

func (m *MockStoreService) ReplaceStore(ctx context.Context, userID uuid.UUID, store models.Store) error {
	args := m.Called(ctx, userID, store)
	return args.Error(0)
}

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func newTestRouter(t *testing.T) (*Routers, *MockUserService, *MockTokenService, *MockStoreService, *echo.Echo) {
	t.Helper()

	users := new(MockUserService)
	tokens := new(MockTokenService)
	stores := new(MockStoreService)

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}

	return NewRouter(slog.Default(), users, tokens, stores), users, tokens, stores, e
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID uuid.UUID) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("user", &jwt.Token{
		Claims: jwt.MapClaims{"uid": userID.String()},
	})
	return c
}

func TestGetStore_ReturnsStoreEnvelope(t *testing.T) {
	router, _, _, stores, e := newTestRouter(t)

	userID := uuid.New()
	stored := models.Store{
		"p1": {ID: "p1", Name: "Talk", CreateAt: 1, Slides: []models.Slide{{ID: "s1"}}},
	}
	stores.On("GetStore", mock.Anything, userID).Return(stored, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/store", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, userID)

	require.NoError(t, router.GetStore(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.StoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, stored, resp.Store)
	stores.AssertExpectations(t)
}

func TestGetStore_MissingToken(t *testing.T) {
	router, _, _, stores, e := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/store", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, router.GetStore(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	stores.AssertNotCalled(t, "GetStore", mock.Anything, mock.Anything)
}

func TestReplaceStore_Success(t *testing.T) {
	router, _, _, stores, e := newTestRouter(t)

	userID := uuid.New()
	body := `{"store": {"p1": {"id": "p1", "name": "Talk", "slides": [{"id": "s1", "elements": [{"id": "e1", "elementType": "text", "x": 5, "y": 10, "width": 40, "height": 12, "text": "hi"}]}]}}}`

	stores.On("ReplaceStore", mock.Anything, userID, mock.AnythingOfType("models.Store")).
		Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/store", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, userID)

	require.NoError(t, router.ReplaceStore(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	sent := stores.Calls[0].Arguments.Get(2).(models.Store)
	assert.Equal(t, "Talk", sent["p1"].Name)
	stores.AssertExpectations(t)
}

func TestReplaceStore_RejectsOutOfRangeGeometry(t *testing.T) {
	router, _, _, stores, e := newTestRouter(t)

	// width 200 exceeds the percentage scale
	body := `{"store": {"p1": {"id": "p1", "slides": [{"id": "s1", "elements": [{"id": "e1", "elementType": "text", "x": 0, "y": 0, "width": 200, "height": 10}]}]}}}`

	req := httptest.NewRequest(http.MethodPut, "/store", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, uuid.New())

	require.NoError(t, router.ReplaceStore(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_store")
	stores.AssertNotCalled(t, "ReplaceStore", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_Duplicate(t *testing.T) {
	router, users, _, _, e := newTestRouter(t)

	users.On("RegisterNewUser", mock.Anything, mock.AnythingOfType("dto.UserRegisterInput")).
		Return(uuid.Nil, fmt.Errorf("services.RegisterNewUser: %w", userservice.ErrUserExist)).Once()

	body := `{"name": "Ada", "email": "ada@example.com", "password": "correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, router.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "user_already_exists")
}

func TestRegister_InvalidPayload(t *testing.T) {
	router, users, _, _, e := newTestRouter(t)

	body := `{"name": "Ada", "email": "not-an-email", "password": "pw"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, router.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertNotCalled(t, "RegisterNewUser", mock.Anything, mock.Anything)
}

func TestLogin_BadCredentials(t *testing.T) {
	router, users, _, _, e := newTestRouter(t)

	users.On("Login", mock.Anything, "ada@example.com", "wrong password").
		Return(nil, userservice.ErrInvalidCredentials).Once()

	body := `{"email": "ada@example.com", "password": "wrong password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, router.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
