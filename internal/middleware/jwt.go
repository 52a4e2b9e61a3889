package middleware // middleware provides shared request processing for handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nutritrack/nutritrack-server/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's identity claims into the request context. The
// provided secret must match the one used when issuing tokens. Handlers
// behind this middleware read the authenticated identity via
// c.Get("user_id") and c.Get("email").
//
// A request with no credential at all is answered 401; a request carrying a
// malformed, tampered or expired token is answered 403. The two cases stay
// distinct so clients can tell "log in" apart from "token rejected".
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "access token required"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")
			return authenticate(c, next, secret, raw)
		}
	}
}

// JWTAuthWithQuery behaves like JWTAuth but additionally accepts the token
// as a ?token= query parameter. Inline image references (<img src=...>)
// cannot set headers, so the photo-bytes route needs the query form; both
// forms run through the same validation path. A query token takes
// precedence when both are supplied.
func JWTAuthWithQuery(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := c.QueryParam("token"); raw != "" {
				return authenticate(c, next, secret, raw)
			}
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "access token required"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")
			return authenticate(c, next, secret, raw)
		}
	}
}

// authenticate verifies a raw token and, on success, stores the identity in
// the context and calls the next handler.
func authenticate(c echo.Context, next echo.HandlerFunc, secret, raw string) error {
	claims, err := utils.ParseAccessToken(secret, raw)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "token expired"})
		}
		return c.JSON(http.StatusForbidden, map[string]string{"error": "invalid token"})
	}
	c.Set("user_id", claims.UserID)
	c.Set("email", claims.Email)
	return next(c)
}
