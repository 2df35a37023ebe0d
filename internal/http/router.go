// Package httpapi wires the HTTP transport (Gin) to the application services,
// middleware, and route handlers. It owns the cross-cutting order: tracing,
// correlation IDs, logging with redaction, panic recovery, compression,
// metrics, authentication, idempotency, rate limiting, CORS, and security
// headers.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggofiles "github.com/swaggo/files"
	ginswagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/applicationtrack/applicationtrack-backend/docs"
	"github.com/applicationtrack/applicationtrack-backend/internal/ai"
	"github.com/applicationtrack/applicationtrack-backend/internal/config"
	"github.com/applicationtrack/applicationtrack-backend/internal/domain"
	"github.com/applicationtrack/applicationtrack-backend/internal/http/handlers"
	"github.com/applicationtrack/applicationtrack-backend/internal/http/middleware"
	"github.com/applicationtrack/applicationtrack-backend/internal/repo"
	"github.com/applicationtrack/applicationtrack-backend/internal/services"
)

// applicationRepoShim adapts the repository free functions to the
// services.ApplicationRepo interface. This keeps the service decoupled from
// the concrete repo package while reusing the existing functions.
type applicationRepoShim struct{}

func (applicationRepoShim) Create(ctx context.Context, db *gorm.DB, app *domain.Application) error {
	return repo.CreateApplication(ctx, db, app)
}

func (applicationRepoShim) Get(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Application, error) {
	return repo.GetApplication(ctx, db, id, userID)
}

func (applicationRepoShim) List(ctx context.Context, db *gorm.DB, userID string, f repo.Filter) ([]domain.Application, error) {
	return repo.ListApplications(ctx, db, userID, f)
}

func (applicationRepoShim) Update(ctx context.Context, db *gorm.DB, id, userID string, updates map[string]any) error {
	return repo.UpdateApplication(ctx, db, id, userID, updates)
}

func (applicationRepoShim) Delete(ctx context.Context, db *gorm.DB, id, userID string) error {
	return repo.DeleteApplication(ctx, db, id, userID)
}

func (applicationRepoShim) Reminders(ctx context.Context, db *gorm.DB, userID string, until time.Time) ([]domain.Application, error) {
	return repo.ListReminders(ctx, db, userID, until)
}

// RegisterRoutes attaches all middleware and endpoints to the Gin engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate the correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after the logger
//  5. Body size limiter and gzip compression
//  6. Metrics
//  7. CORS and security headers
//
// Authentication, idempotency, and rate limiting are group-scoped: the
// idempotency check needs the authenticated user, and the limiter must run
// after it so replays are served without spending tokens.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, assistant ai.Assistant, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{middleware.HeaderIdempotencyKey},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// CORS posture: allow all when no allowlist is configured.
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{middleware.HeaderRequestID, "Content-Length", "ETag"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{middleware.HeaderRequestID, "Content-Length", "ETag"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginswagger.WrapHandler(swaggofiles.Handler))
	}

	// Dependency injection: services ← repo/db/assistant
	appSvc := services.NewApplicationService(db, applicationRepoShim{})
	authSvc := services.NewAuthService(db, cfg.JWTSecret, cfg.JWTAccessTTL)
	docSvc := &services.DocumentService{DB: db}
	h := handlers.New(appSvc, authSvc, docSvc, assistant)
	h.IdemTTL = cfg.IdempotencyTTL

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())

	api := groupWithPrefix(r, cfg.APIBasePath)

	// Public endpoints: account creation and login, IP-keyed rate limit.
	public := api.Group("")
	public.Use(rl.Handler())
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)
	}

	// Everything else requires a valid access token. The idempotency check
	// runs after auth (it is keyed by user) and before the limiter (replays
	// bypass it).
	authed := api.Group("")
	authed.Use(middleware.RequireAuth(cfg.JWTSecret))
	authed.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, uid, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, uid, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))
	authed.Use(rl.Handler())
	{
		// Applications
		authed.POST("/applications", h.CreateApplication)
		authed.GET("/applications", h.ListApplications)
		authed.GET("/applications/:id", h.GetApplication)
		authed.PATCH("/applications/:id", h.UpdateApplication)
		authed.PATCH("/applications/:id/status", h.UpdateApplicationStatus)
		authed.DELETE("/applications/:id", h.DeleteApplication)

		// Reminders and statistics
		authed.GET("/reminders", h.ListReminders)
		authed.GET("/stats", h.GetStats)

		// Documents
		authed.POST("/applications/:id/documents", h.AttachDocument)
		authed.GET("/applications/:id/documents", h.ListDocuments)
		authed.DELETE("/documents/:id", h.DeleteDocument)

		// Assistant
		authed.POST("/ai/parse", h.ParseAnnouncement)
		authed.POST("/ai/chat", h.AssistantChat)
		authed.POST("/applications/:id/cover-letter", h.GenerateCoverLetter)
		authed.POST("/applications/:id/match", h.MatchScore)
	}
}

// limitBody caps the request body for all endpoints via http.MaxBytesReader;
// oversized bodies error on read downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
