package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	apperrors "github.com/saurabh-eg/Tasksync/internal/errors"
)

// DefaultAccessTokenTTL is the token lifetime used when no override is configured.
const DefaultAccessTokenTTL = 30 * time.Minute

// Claims represents JWT claims. The user id travels in the registered "sub" claim.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTService issues and validates signed access tokens. The secret is fixed at
// process startup; key rotation is not supported.
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTService creates a new JWT service with the given secret and token lifetime.
// A non-positive ttl falls back to DefaultAccessTokenTTL.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// GenerateAccessToken generates a new access token for the user.
func (s *JWTService) GenerateAccessToken(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken checks signature and expiry and returns the subject user id.
// Malformed, badly signed and expired tokens are indistinguishable to the
// caller: all return apperrors.ErrInvalidToken.
func (s *JWTService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return "", apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", apperrors.ErrInvalidToken
	}

	return claims.Subject, nil
}
