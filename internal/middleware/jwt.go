package middleware // reusable HTTP middleware shared by the route groups

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by the middleware in this package.
const (
	ctxUserID  = "user_id"
	ctxEmail   = "email"
	ctxStudent = "student"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores the token's subject as an int64 under "user_id" and its email
// claim under "email". The provided secret must match the one used when
// issuing tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			if msg := authenticate(c, secret, strings.TrimPrefix(auth, "Bearer ")); msg != "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
			}
			return next(c)
		}
	}
}

// OptionalJWTAuth is JWTAuth for routes that also serve guests: a valid
// bearer sets the same context keys, and a missing or bad one is ignored.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				authenticate(c, secret, strings.TrimPrefix(auth, "Bearer "))
			}
			return next(c)
		}
	}
}

// authenticate verifies raw and stores its claims on c. It returns an error
// message for the client, or "" on success.
func authenticate(c echo.Context, secret, raw string) string {
	claims, err := ParseAccessToken(secret, raw)
	if err != nil {
		return "invalid token"
	}
	uid, ok := subjectID(claims)
	if !ok {
		return "invalid claims"
	}
	c.Set(ctxUserID, uid)
	if email, ok := claims["email"].(string); ok {
		c.Set(ctxEmail, email)
	}
	return ""
}

// ParseAccessToken verifies an HS256 token and returns its claims.
func ParseAccessToken(secret, raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject anything but HMAC so a token cannot pick its own algorithm.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, echo.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, echo.ErrUnauthorized
	}
	return claims, nil
}

// subjectID reads the numeric "sub" claim. JSON numbers decode as float64;
// string subjects are parsed.
func subjectID(claims jwt.MapClaims) (int64, bool) {
	switch v := claims["sub"].(type) {
	case float64:
		return int64(v), v > 0
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil && n > 0
	}
	return 0, false
}

// UserID returns the authenticated user's id set by JWTAuth.
func UserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(ctxUserID).(int64)
	return id, ok
}

// Email returns the email claim of the access token, if any.
func Email(c echo.Context) string {
	s, _ := c.Get(ctxEmail).(string)
	return s
}
