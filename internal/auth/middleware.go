package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	apperrors "github.com/saurabh-eg/Tasksync/internal/errors"
	"github.com/saurabh-eg/Tasksync/internal/model"
	"github.com/saurabh-eg/Tasksync/internal/repository"
)

// currentUserKey is the echo context key under which the resolved user is stored.
const currentUserKey = "currentUser"

// RequireUser guards protected routes. It extracts the bearer token, validates
// it, resolves the subject against the user store and stores the full user
// record in the request context.
//
// Status contract: a missing or garbled Authorization header is 403, an
// invalid/expired token or an unknown subject is 401. Clients depend on the
// split; the precise reason is only logged.
func RequireUser(jwtService *JWTService, users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok {
				c.Logger().Debug("auth gate: missing bearer credential")
				httpErr := apperrors.MapErrorToHTTP(apperrors.ErrMissingCredential)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			subject, err := jwtService.ValidateToken(token)
			if err != nil {
				c.Logger().Debug("auth gate: token validation failed")
				httpErr := apperrors.MapErrorToHTTP(apperrors.ErrInvalidToken)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			userID, err := uuid.Parse(subject)
			if err != nil {
				c.Logger().Debug("auth gate: malformed subject claim")
				httpErr := apperrors.MapErrorToHTTP(apperrors.ErrInvalidToken)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Subject was valid when issued but the account is gone.
					c.Logger().Debug("auth gate: token subject no longer exists")
					return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
						Error: "User not found",
						Code:  "USER_NOT_FOUND",
					})
				}
				return echo.NewHTTPError(http.StatusInternalServerError, apperrors.ErrorResponse{
					Error: "internal server error",
					Code:  "INTERNAL_ERROR",
				})
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user resolved by RequireUser, or nil on routes the
// middleware did not run on.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(currentUserKey).(*model.User)
	return user
}

// bearerToken pulls the token out of "Authorization: Bearer <token>".
func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
