package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func idemRouter(gotKey *string, gotOK *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdempotencyKey())
	r.POST("/t", func(c *gin.Context) {
		*gotKey, *gotOK = GetIdempotencyKey(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestIdempotencyKey_AbsentHeaderIsNoOp(t *testing.T) {
	var key string
	var ok bool
	r := idemRouter(&key, &ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/t", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ok || key != "" {
		t.Fatalf("no header must mean no key, got %q %v", key, ok)
	}
}

func TestIdempotencyKey_ValidKeyIsStashed(t *testing.T) {
	var key string
	var ok bool
	r := idemRouter(&key, &ok)

	req := httptest.NewRequest(http.MethodPost, "/t", nil)
	req.Header.Set(HeaderIdempotencyKey, "kiosk-3:req.42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !ok || key != "kiosk-3:req.42" {
		t.Fatalf("key not stashed: %q %v", key, ok)
	}
}

func TestIdempotencyKey_RejectsMalformed(t *testing.T) {
	var key string
	var ok bool
	r := idemRouter(&key, &ok)

	for _, bad := range []string{
		"has space",
		"emoji-☃",
		strings.Repeat("k", maxIdemKeyLen+1),
	} {
		req := httptest.NewRequest(http.MethodPost, "/t", nil)
		req.Header.Set(HeaderIdempotencyKey, bad)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("key %q: status = %d, want 400", bad, w.Code)
		}
		if ok {
			t.Errorf("key %q: malformed key must not reach the handler", bad)
		}
	}
}

func TestGetIdempotencyKey_WithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("expected no key")
	}
}
