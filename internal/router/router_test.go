package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/saurabh-eg/Tasksync/internal/auth"
	"github.com/saurabh-eg/Tasksync/internal/handler"
	"github.com/saurabh-eg/Tasksync/internal/model"
	"github.com/saurabh-eg/Tasksync/internal/repository"
	"github.com/saurabh-eg/Tasksync/internal/service"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *mockTaskRepo) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *mockTaskRepo) List(ctx context.Context, ownerID uuid.UUID, filter repository.TaskFilter, sortField, order string, limit int) ([]model.Task, error) {
	args := m.Called(ctx, ownerID, filter, sortField, order, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *mockTaskRepo) UpdateFields(ctx context.Context, id, ownerID uuid.UUID, fields map[string]interface{}) (int64, error) {
	args := m.Called(ctx, id, ownerID, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTaskRepo) Count(ctx context.Context, ownerID uuid.UUID, filter repository.TaskCountFilter) (int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func newTestServer(userRepo *mockUserRepo, taskRepo *mockTaskRepo) (*echo.Echo, *auth.JWTService) {
	e := echo.New()
	e.Logger.SetOutput(io.Discard)

	jwtService := auth.NewJWTService("router-test-secret", 30*time.Minute)
	passwords := auth.NewPasswordServiceWithCost(bcrypt.MinCost)

	authService := service.NewAuthService(userRepo, jwtService, passwords)
	taskService := service.NewTaskService(taskRepo, nil)

	Register(e, handler.NewAuthHandler(authService), handler.NewTaskHandler(taskService), jwtService, userRepo)
	return e, jwtService
}

func TestHealthEndpoint(t *testing.T) {
	e, _ := newTestServer(new(mockUserRepo), new(mockTaskRepo))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestProtectedRoutesStatusSplit(t *testing.T) {
	e, _ := newTestServer(new(mockUserRepo), new(mockTaskRepo))

	// No credential at all: 403.
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// A credential that fails verification: 401.
	req = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer bogus")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterThenMe(t *testing.T) {
	userRepo := new(mockUserRepo)
	taskRepo := new(mockTaskRepo)
	e, _ := newTestServer(userRepo, taskRepo)

	userID := uuid.New()
	userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = userID
	}).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"a@x.com","password":"secret","name":"A"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var tokenResp handler.TokenResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokenResp))
	assert.NotEmpty(t, tokenResp.AccessToken)
	assert.Equal(t, "bearer", tokenResp.TokenType)
	assert.Equal(t, "a@x.com", tokenResp.User.Email)

	// The issued token resolves the same user on a protected route.
	userRepo.On("FindByID", mock.Anything, userID).
		Return(&model.User{ID: userID, Email: "a@x.com", Name: "A"}, nil)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tokenResp.AccessToken)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var me model.User
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, userID, me.ID)
	assert.NotContains(t, rec.Body.String(), "password")
	userRepo.AssertExpectations(t)
}

func TestDuplicateRegistrationConflict(t *testing.T) {
	userRepo := new(mockUserRepo)
	e, _ := newTestServer(userRepo, new(mockTaskRepo))

	userRepo.On("FindByEmail", mock.Anything, "a@x.com").
		Return(&model.User{ID: uuid.New(), Email: "a@x.com"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"a@x.com","password":"secret","name":"A"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already registered")
}
