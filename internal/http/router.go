// Package httpapi wires the HTTP transport (Gin) to the coaching services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, rate limiting and the provider
// credential guard.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Streamed replies are never buffered or compressed
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-advisor-coach/docs"
	"github.com/tbourn/go-advisor-coach/internal/config"
	"github.com/tbourn/go-advisor-coach/internal/domain"
	"github.com/tbourn/go-advisor-coach/internal/http/handlers"
	"github.com/tbourn/go-advisor-coach/internal/http/middleware"
	"github.com/tbourn/go-advisor-coach/internal/llm"
	"github.com/tbourn/go-advisor-coach/internal/playbook"
	"github.com/tbourn/go-advisor-coach/internal/repo"
	"github.com/tbourn/go-advisor-coach/internal/services"
	"github.com/tbourn/go-advisor-coach/internal/session"
)

// personaRepoShim adapts the repository free functions to the
// services.PersonaRepo interface expected by the PersonaService.
type personaRepoShim struct{}

// CreatePersona proxies repo.CreatePersona.
func (personaRepoShim) CreatePersona(ctx context.Context, db *gorm.DB, p *domain.Persona) (*domain.Persona, error) {
	return repo.CreatePersona(ctx, db, p)
}

// GetPersona proxies repo.GetPersona.
func (personaRepoShim) GetPersona(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Persona, error) {
	return repo.GetPersona(ctx, db, id, userID)
}

// CountPersonas proxies repo.CountPersonas (pagination support).
func (personaRepoShim) CountPersonas(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	return repo.CountPersonas(ctx, db, userID)
}

// ListPersonasPage proxies repo.ListPersonasPage (pagination support).
func (personaRepoShim) ListPersonasPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Persona, error) {
	return repo.ListPersonasPage(ctx, db, userID, offset, limit)
}

// DeletePersona proxies repo.DeletePersona.
func (personaRepoShim) DeletePersona(ctx context.Context, db *gorm.DB, id, userID string) error {
	return repo.DeletePersona(ctx, db, id, userID)
}

// Deps are the collaborators RegisterRoutes builds the services from.
// LLM and Sessions may be nil: a client is then built from cfg.LLM and an
// in-memory session store from cfg.Session. A nil Playbook disables
// guidance; empty Templates keeps the built-in presets.
type Deps struct {
	DB        *gorm.DB
	LLM       *llm.Client
	Sessions  session.Store
	Playbook  *playbook.Playbook
	Templates []domain.Persona
}

var (
	allowHeaders = []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		middleware.HeaderUserID, middleware.HeaderIdempotencyKey, "If-None-Match",
	}
	exposeHeaders = []string{
		"X-Request-ID", "Content-Length", "Content-Language", "ETag", "Retry-After",
		handlers.HeaderDataStream, middleware.HeaderIdempotencyReplayed,
	}
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per user/IP, bypass on replay)
//  9. CORS, security headers and gzip (the chat stream is excluded)
//
// The provider-backed routes additionally run the credential guard, so a
// missing key is reported before the body is read.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"OpenAI-Organization"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
			if deps.DB == nil {
				return false, nil
			}
			rec, err := repo.GetIdempotency(ctx, deps.DB, userID, scope, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	useCORS(r, cfg.CORS.AllowedOrigins)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	apiBase := cfg.APIBasePath
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{
		joinPath(apiBase, "/chat"),
		"/metrics",
	})))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	client := deps.LLM
	if client == nil {
		// A bad base URL still yields a client that reports the failure.
		client, _ = llm.New(llm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Timeout: cfg.LLM.Timeout,
		})
	}
	store := deps.Sessions
	if store == nil {
		store = session.NewMemory(cfg.Session.MaxEntries, cfg.Session.TTL)
	}

	// Dependency injection: services ← client/db/store
	chatSvc := services.NewChatService(client, cfg.LLM.ChatModel)
	if cfg.LLM.ChatTemperature > 0 {
		chatSvc.Temperature = cfg.LLM.ChatTemperature
	}
	if cfg.LLM.ChatMaxTokens > 0 {
		chatSvc.MaxTokens = cfg.LLM.ChatMaxTokens
	}
	chatSvc.HistoryBudget = cfg.LLM.HistoryTokenBudget

	fbSvc := services.NewFeedbackService(client, cfg.LLM.FeedbackModel, deps.Playbook)
	if cfg.LLM.FeedbackTemperature > 0 {
		fbSvc.Temperature = cfg.LLM.FeedbackTemperature
	}

	personaSvc := services.NewPersonaService(deps.DB, personaRepoShim{})
	personaSvc.SetTemplates(deps.Templates)

	sessionSvc := services.NewSessionService(store, personaSvc, fbSvc, cfg.Session.TTL)

	h := handlers.New(chatSvc, fbSvc, personaSvc, sessionSvc)
	if cfg.IdempotencyTTL > 0 {
		h.IdempotencyTTL = cfg.IdempotencyTTL
	}

	api := groupWithPrefix(r, apiBase)
	{
		// Personas
		api.POST("/personas", h.CreatePersona)
		api.GET("/personas", h.ListPersonas)
		api.GET("/personas/:id", h.GetPersona)
		api.DELETE("/personas/:id", h.DeletePersona)
		api.GET("/persona-templates", h.ListPersonaTemplates)

		// Conversation hand-off
		api.POST("/conversations", h.EndConversation)
		api.GET("/conversations/:id", h.GetConversation)
	}

	llmAPI := api.Group("", middleware.RequireCredential(client.Ready))
	{
		llmAPI.POST("/chat", h.PostChat)
		llmAPI.POST("/feedback-realtime", h.FeedbackRealtime)
		llmAPI.POST("/feedback", h.ConversationFeedback)
		llmAPI.POST("/conversations/:id/feedback", h.ReviewConversation)
	}
}

// useCORS installs the CORS posture: allow all when no origins are
// configured, otherwise echo allowlisted origins.
func useCORS(r *gin.Engine, origins []string) {
	if len(origins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
		return
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	})
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    exposeHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
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

func joinPath(base, p string) string {
	if base == "" || base == "/" {
		return p
	}
	return base + p
}
