// Package middleware provides the gin middleware chain in front of the
// invocation API.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pandeptwidyaop/hostbridge/internal/models"
)

// TokenQueryParam carries the token for WebSocket handshakes, where browsers
// cannot set an Authorization header.
const TokenQueryParam = "token"

// TokenAuth requires "Authorization: Bearer <token>" on every request. An
// empty token disables the check.
func TokenAuth(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) { c.Next() }
	}

	want := []byte(token)
	return func(c *gin.Context) {
		got := bearerToken(c.GetHeader("Authorization"))
		if got == "" && websocket.IsWebSocketUpgrade(c.Request) {
			got = c.Query(TokenQueryParam)
		}

		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.InvokeResponse{
				Error: "unauthorized",
				Kind:  "unauthorized",
			})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
