package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rl := NewRateLimiter(100, 2, KeyByUserOrIP())
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestRateLimiter_RejectsWhenExhausted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// Zero refill: only the single burst token is ever available.
	rl := NewRateLimiter(0, 1, KeyByUserOrIP())
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header on 429")
	}
}

func TestRateLimiter_ReplayBypassesLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(ctxKeyRateBypass, true); c.Next() })
	rl := NewRateLimiter(0, 1, KeyByUserOrIP())
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("bypassed request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestRateLimiter_SeparateBucketsPerUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mkRouter := func(uid string, rl *RateLimiter) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) { c.Set(ctxKeyUserID, uid); c.Next() })
		r.Use(rl.Handler())
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	rl := NewRateLimiter(0, 1, KeyByUserOrIP())
	ra := mkRouter("alice", rl)
	rb := mkRouter("bob", rl)

	w := httptest.NewRecorder()
	ra.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("alice: expected 200, got %d", w.Code)
	}
	// Alice is now exhausted; Bob still has his own token.
	w = httptest.NewRecorder()
	rb.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("bob: expected 200, got %d", w.Code)
	}
	w = httptest.NewRecorder()
	ra.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("alice again: expected 429, got %d", w.Code)
	}
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1, KeyByUserOrIP())
	rl.ttl = time.Millisecond

	rl.getVisitor("stale")
	time.Sleep(5 * time.Millisecond)

	rl.mu.Lock()
	rl.lookups = 4999 // next lookup triggers the sweep
	rl.mu.Unlock()
	rl.getVisitor("fresh")

	rl.mu.Lock()
	_, staleAlive := rl.visitors["stale"]
	_, freshAlive := rl.visitors["fresh"]
	rl.mu.Unlock()
	if staleAlive {
		t.Fatalf("stale bucket should have been evicted")
	}
	if !freshAlive {
		t.Fatalf("fresh bucket should survive the sweep")
	}
}
