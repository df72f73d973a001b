package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/saurabh-eg/Tasksync/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func invokeGate(t *testing.T, jwtService *JWTService, repo *MockUserRepository, authorization string) (bool, *model.User, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	var seen *model.User
	next := func(c echo.Context) error {
		called = true
		seen = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	}

	err := RequireUser(jwtService, repo)(next)(c)
	return called, seen, err
}

func TestRequireUser_MissingCredentialIs403(t *testing.T) {
	jwtService := NewJWTService(testSecret, 30*time.Minute)
	repo := new(MockUserRepository)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"bare scheme", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called, _, err := invokeGate(t, jwtService, repo, tt.header)
			assert.False(t, called)
			httpErr, ok := err.(*echo.HTTPError)
			assert.True(t, ok)
			assert.Equal(t, http.StatusForbidden, httpErr.Code)
		})
	}
	repo.AssertNotCalled(t, "FindByID")
}

func TestRequireUser_InvalidTokenIs401(t *testing.T) {
	jwtService := NewJWTService(testSecret, 30*time.Minute)
	repo := new(MockUserRepository)

	called, _, err := invokeGate(t, jwtService, repo, "Bearer not-a-token")
	assert.False(t, called)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	repo.AssertNotCalled(t, "FindByID")
}

func TestRequireUser_UnknownSubjectIs401(t *testing.T) {
	jwtService := NewJWTService(testSecret, 30*time.Minute)
	repo := new(MockUserRepository)

	userID := uuid.New()
	token, err := jwtService.GenerateAccessToken(userID.String())
	assert.NoError(t, err)

	// User deleted after token issuance.
	repo.On("FindByID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)

	called, _, gateErr := invokeGate(t, jwtService, repo, "Bearer "+token)
	assert.False(t, called)
	httpErr, ok := gateErr.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	repo.AssertExpectations(t)
}

func TestRequireUser_ResolvesCurrentUser(t *testing.T) {
	jwtService := NewJWTService(testSecret, 30*time.Minute)
	repo := new(MockUserRepository)

	user := &model.User{
		ID:    uuid.New(),
		Email: "a@x.com",
		Name:  "A",
	}
	token, err := jwtService.GenerateAccessToken(user.ID.String())
	assert.NoError(t, err)

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()

	called, seen, gateErr := invokeGate(t, jwtService, repo, "Bearer "+token)
	assert.NoError(t, gateErr)
	assert.True(t, called)
	assert.Equal(t, user, seen)
	// Exactly one lookup per request.
	repo.AssertNumberOfCalls(t, "FindByID", 1)
}
