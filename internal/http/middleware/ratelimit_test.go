package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func limiterRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity())
	r.Use(rl.Handler())
	r.GET("/t", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	r := limiterRouter(NewRateLimiter(0, 3, KeyByUserOrIP()))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, w.Code)
		}
	}

	// Bucket drained, zero refill: next request must be rejected.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Fatalf("missing Retry-After hint")
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	r := limiterRouter(NewRateLimiter(0, 1, KeyByUserOrIP()))

	// Two different staff users each get their own bucket.
	for _, user := range []string{"staff-1", "staff-2"} {
		req := httptest.NewRequest(http.MethodGet, "/t", nil)
		req.Header.Set(HeaderUserID, user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("user %s: status = %d", user, w.Code)
		}
	}

	// Second request from the first user is over budget.
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(HeaderUserID, "staff-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
}

func TestKeyByUserOrIP_Prefixes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	keyFn := KeyByUserOrIP()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("userID", "staff-1")
	if got := keyFn(c); got != "user:staff-1" {
		t.Fatalf("key = %q, want user:staff-1", got)
	}

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c2.Request.RemoteAddr = "203.0.113.7:1234"
	if got := keyFn(c2); got != "ip:203.0.113.7" {
		t.Fatalf("key = %q, want ip:203.0.113.7", got)
	}
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1, KeyByUserOrIP())
	rl.idleTTL = 10 * time.Millisecond
	rl.gcEveryN = 1 // evict on every lookup

	for i := 0; i < 50; i++ {
		rl.getLimiter(fmt.Sprintf("ip:10.0.0.%d", i))
	}
	time.Sleep(20 * time.Millisecond)
	rl.getLimiter("ip:fresh") // triggers eviction of everything idle

	rl.mu.Lock()
	n := len(rl.clients)
	rl.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected only the fresh bucket to survive, have %d", n)
	}
}
