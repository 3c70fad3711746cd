package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// UserHeader carries the verified user id set by the authenticating gateway.
const UserHeader = "X-User-ID"

const userKey = "uid"

// Identity stores the caller's user id in the context and rejects anonymous requests.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := strings.TrimSpace(c.Request().Header.Get(UserHeader))
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
			}
			c.Set(userKey, uid)
			return next(c)
		}
	}
}

func userID(c echo.Context) string {
	uid, _ := c.Get(userKey).(string)
	return uid
}

// requireCronSecret checks the bearer token on scan triggers when a secret is configured.
func (h *Handler) requireCronSecret(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.cronSecret == "" {
			return next(c)
		}
		token := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) != 1 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		}
		return next(c)
	}
}
