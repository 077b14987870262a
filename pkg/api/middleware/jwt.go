package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/code-gritt/klientel/pkg/auth"
)

// JWT extracts and validates the bearer token, placing the claims into the
// request context for resolvers to pick up. Requests without a token pass
// through unauthenticated; individual operations decide whether they need
// one. A present-but-invalid token is rejected outright.
func JWT(secret string, blacklist *auth.TokenBlacklist) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return next(c)
			}

			claims, err := auth.ValidateJWTWithBlacklist(c.Request().Context(), token, secret, blacklist)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "invalid or expired token",
				})
			}

			ctx := auth.WithClaims(c.Request().Context(), claims)
			ctx = auth.WithToken(ctx, token)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// bearerToken reads the token from the Authorization header, falling back
// to the "token" query parameter for WebSocket clients that cannot set
// headers.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.QueryParam("token")
}
