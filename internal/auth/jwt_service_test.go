package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/saurabh-eg/Tasksync/internal/errors"
)

const testSecret = "test-secret"

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService(testSecret, 30*time.Minute)
	userID := uuid.New().String()

	token, err := svc.GenerateAccessToken(userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	subject, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, subject)
}

func TestJWTService_InvalidTokensCollapse(t *testing.T) {
	svc := NewJWTService(testSecret, 30*time.Minute)
	other := NewJWTService("other-secret", 30*time.Minute)

	goodToken, err := other.GenerateAccessToken(uuid.New().String())
	assert.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong signature", goodToken},
		{"tampered", mustToken(t, svc) + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			// Every failure mode maps to the same sentinel.
			assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
		})
	}
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := NewJWTService(testSecret, 30*time.Minute)

	// Sign an already-expired token with the service's secret.
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-31 * time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	assert.NoError(t, err)

	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	// A token one minute short of its expiry is still good.
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Minute))
	valid, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	assert.NoError(t, err)

	subject, err := svc.ValidateToken(valid)
	assert.NoError(t, err)
	assert.Equal(t, claims.Subject, subject)
}

func TestJWTService_MissingSubject(t *testing.T) {
	svc := NewJWTService(testSecret, 30*time.Minute)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	assert.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func mustToken(t *testing.T, svc *JWTService) string {
	t.Helper()
	token, err := svc.GenerateAccessToken(uuid.New().String())
	assert.NoError(t, err)
	return token
}
