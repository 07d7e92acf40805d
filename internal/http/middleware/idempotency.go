// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency-key support for the public token-creation
// endpoint. Patient kiosks retry on flaky networks; a stable Idempotency-Key
// lets the token handler replay the originally issued token instead of
// issuing a duplicate. The middleware only validates and stashes the key —
// the replay lookup needs the parsed request body (department id), so it
// lives in the handler.
package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients use to convey an
// idempotency key for unsafe operations. Its value must be stable across
// retries of the same semantic operation.
const HeaderIdempotencyKey = "Idempotency-Key"

// ctxKeyIdemKey stashes the validated key; read it via GetIdempotencyKey.
const ctxKeyIdemKey = "idem.key"

// idemKeyPattern is a conservative RFC7230-like token pattern.
var idemKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// maxIdemKeyLen caps the accepted key length.
const maxIdemKeyLen = 200

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by IdempotencyKey. The second return value indicates presence.
// Handlers should prefer this over reading the header directly.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IdempotencyKey validates the Idempotency-Key header when present and
// stashes it in the request context. An absent header is a no-op; a malformed
// one fails the request with 400 before any work happens.
func IdempotencyKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdemKeyLen || !idemKeyPattern.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)
		c.Next()
	}
}
