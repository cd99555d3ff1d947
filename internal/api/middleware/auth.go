package middleware

import (
	"net/http"
	"strings"

	"gig-marketplace/internal/domain"

	"github.com/labstack/echo/v4"
)

const userContextKey = "authenticated-user"

// Authenticate resolves the Authorization header to a user and stores it on
// the request context. A bare token and a "Bearer <token>" header are both
// accepted.
func Authenticate(verifier domain.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(echo.HeaderAuthorization)
			token = strings.TrimPrefix(token, "Bearer ")
			if token == "" {
				return unauthorized(c, "No token provided")
			}

			user, err := verifier.VerifyToken(c.Request().Context(), token)
			if err != nil {
				return unauthorized(c, domain.MessageOf(err))
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user set by Authenticate.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(userContextKey).(*domain.User)
	return user
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, map[string]interface{}{
		"success": false,
		"data":    nil,
		"message": message,
	})
}
