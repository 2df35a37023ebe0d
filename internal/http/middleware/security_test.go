package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func securityRouter(opt SecurityOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), SecurityHeaders(opt))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	r := securityRouter(SecurityOptions{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	h := w.Header()
	if h.Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("missing nosniff")
	}
	if h.Get("X-Frame-Options") != "DENY" {
		t.Errorf("missing frame deny")
	}
	if h.Get("Referrer-Policy") != "no-referrer" {
		t.Errorf("missing referrer policy")
	}
	if h.Get("Strict-Transport-Security") != "" {
		t.Errorf("HSTS must be off by default")
	}
	if !strings.Contains(h.Get("Access-Control-Expose-Headers"), HeaderRequestID) {
		t.Errorf("request id not exposed: %q", h.Get("Access-Control-Expose-Headers"))
	}
}

func TestSecurityHeaders_HSTSOnlyOverHTTPS(t *testing.T) {
	r := securityRouter(SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be set on plain HTTP")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	r.ServeHTTP(w, req)
	got := w.Header().Get("Strict-Transport-Security")
	if !strings.HasPrefix(got, "max-age=86400") {
		t.Fatalf("unexpected HSTS value: %q", got)
	}
}

func TestSecurityHeaders_NoStoreAndPolicy(t *testing.T) {
	r := securityRouter(SecurityOptions{NoStore: true, EnablePolicy: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	h := w.Header()
	if h.Get("Cache-Control") != "no-store" {
		t.Errorf("missing no-store")
	}
	if h.Get("Permissions-Policy") == "" {
		t.Errorf("missing permissions policy")
	}
	if h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Errorf("missing cross-domain policy")
	}
}
