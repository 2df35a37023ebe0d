package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/applicationtrack/applicationtrack-backend/internal/ai"
	"github.com/applicationtrack/applicationtrack-backend/internal/config"
	"github.com/applicationtrack/applicationtrack-backend/internal/domain"
)

func newRouterDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(&domain.User{}, &domain.Application{}, &domain.Document{}, &domain.Idempotency{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath:    "/api/v1",
		JWTSecret:      "router-test-secret",
		JWTAccessTTL:   time.Hour,
		RateRPS:        1000,
		RateBurst:      1000,
		IdempotencyTTL: time.Hour,
		OTEL:           config.OTELConfig{ServiceName: "router-test"},
	}
}

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newRouterDB(t), ai.Template{}, testConfig())
	return r
}

func serve(r *gin.Engine, method, path string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthAndFallbacks(t *testing.T) {
	r := newEngine(t)

	w := serve(r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health returned %d", w.Code)
	}

	w = serve(r, http.MethodGet, "/does-not-exist", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var e struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil || e.Code != "not_found" {
		t.Fatalf("fallback must use the error envelope: %s", w.Body.String())
	}

	w = serve(r, http.MethodPost, "/health", nil, nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestRouter_CommonHeaders(t *testing.T) {
	r := newEngine(t)

	w := serve(r, http.MethodGet, "/health", nil, nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing")
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r := newEngine(t)
	w := serve(r, http.MethodGet, "/metrics", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics returned %d", w.Code)
	}
}

func TestRouter_AuthenticatedFlow(t *testing.T) {
	r := newEngine(t)

	// Protected routes reject anonymous callers.
	w := serve(r, http.MethodGet, "/api/v1/applications", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	// Register and log in through the public group.
	w = serve(r, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"username": "jane", "email": "jane@example.com", "password": "hunter2hunter2",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}
	w = serve(r, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"username": "jane", "password": "hunter2hunter2",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", w.Code, w.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil || login.Token == "" {
		t.Fatalf("missing token: %s", w.Body.String())
	}
	auth := map[string]string{"Authorization": "Bearer " + login.Token}

	// Create and read back with the issued token.
	w = serve(r, http.MethodPost, "/api/v1/applications", map[string]any{
		"company": "Acme", "description": "Backend engineer", "applied_at": "2026-03-15",
	}, auth)
	if w.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}
	var app struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &app)

	w = serve(r, http.MethodGet, "/api/v1/applications/"+app.ID, nil, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("get returned %d: %s", w.Code, w.Body.String())
	}

	// The template assistant serves chat even without a provider key.
	w = serve(r, http.MethodPost, "/api/v1/ai/chat", map[string]any{"message": "summary please"}, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("chat returned %d: %s", w.Code, w.Body.String())
	}

	// Endpoints that need a real model answer 503 with the template fallback.
	w = serve(r, http.MethodPost, "/api/v1/ai/parse", map[string]any{"text": "job ad"}, auth)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("parse with template assistant must be 503, got %d", w.Code)
	}
}
