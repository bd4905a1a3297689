package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthHeader carries the shared token on inbound requests.
const AuthHeader = "X-Auth"

// ErrUnauthorized is attached to the gin context when a request fails the token check.
var ErrUnauthorized = errors.New("missing or invalid " + AuthHeader + " header")

// TokenAuth returns a middleware that requires the X-Auth header to equal token.
// An empty token disables the check.
func TokenAuth(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) { c.Next() }
	}
	expected := []byte(token)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(AuthHeader))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			_ = c.Error(ErrUnauthorized)
			c.String(http.StatusUnauthorized, "unauthorized\n")
			c.Abort()
			return
		}
		c.Next()
	}
}
