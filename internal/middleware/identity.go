package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// identityKey names the caller for cache and rate limit keys: the user id
// when JWTAuth ran, "guest" otherwise.
func identityKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatInt(id, 10)
	}
	return "guest"
}
