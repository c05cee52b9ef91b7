// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, persona storage, the completion provider, session hand-off and
// observability settings.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// LLMConfig holds the completion provider settings. An empty APIKey is
// accepted at load time; requests that need the provider fail with a
// configuration error instead.
type LLMConfig struct {
	APIKey              string        // OPENAI_API_KEY
	BaseURL             string        // OPENAI_BASE_URL
	ChatModel           string        // LLM_CHAT_MODEL
	FeedbackModel       string        // LLM_FEEDBACK_MODEL
	ChatTemperature     float64       // LLM_CHAT_TEMPERATURE
	FeedbackTemperature float64       // LLM_FEEDBACK_TEMPERATURE
	ChatMaxTokens       int           // LLM_CHAT_MAX_TOKENS
	Timeout             time.Duration // LLM_TIMEOUT, per completion
	HistoryTokenBudget  int           // LLM_HISTORY_TOKEN_BUDGET, 0 disables trimming
}

// SessionConfig selects and configures the conversation hand-off store.
type SessionConfig struct {
	Backend       string        // SESSION_BACKEND: memory|redis
	TTL           time.Duration // SESSION_TTL
	MaxEntries    int           // SESSION_MAX_ENTRIES (memory backend)
	RedisAddr     string        // REDIS_ADDR
	RedisPassword string        // REDIS_PASSWORD
	RedisDB       int           // REDIS_DB
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // must outlive LLM.Timeout for streamed replies
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath               string // SQLite path
	PlaybookPath         string // optional coaching playbook (markdown)
	PersonaTemplatesPath string // optional persona templates (TOML)

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	LLM     LLMConfig
	Session SessionConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults,
// normalizes values and validates the result. Unparseable numbers and
// durations fall back to their defaults; the returned error lists every
// setting that failed validation.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 45*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		DBPath:               getenv("DB_PATH", "coach.db"),
		PlaybookPath:         getenv("PLAYBOOK_PATH", ""),
		PersonaTemplatesPath: getenv("PERSONA_TEMPLATES_PATH", ""),

		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		LLM: LLMConfig{
			APIKey:              strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			BaseURL:             strings.TrimRight(getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),
			ChatModel:           getenv("LLM_CHAT_MODEL", "gpt-4o-mini"),
			FeedbackModel:       getenv("LLM_FEEDBACK_MODEL", "gpt-4o-mini"),
			ChatTemperature:     getfloat("LLM_CHAT_TEMPERATURE", 0.8),
			FeedbackTemperature: getfloat("LLM_FEEDBACK_TEMPERATURE", 0.7),
			ChatMaxTokens:       getint("LLM_CHAT_MAX_TOKENS", 500),
			Timeout:             getdur("LLM_TIMEOUT", 30*time.Second),
			HistoryTokenBudget:  getint("LLM_HISTORY_TOKEN_BUDGET", 6000),
		},

		Session: SessionConfig{
			Backend:       strings.ToLower(getenv("SESSION_BACKEND", "memory")),
			TTL:           getdur("SESSION_TTL", 2*time.Hour),
			MaxEntries:    getint("SESSION_MAX_ENTRIES", 1024),
			RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getint("REDIS_DB", 0),
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-advisor-coach"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	cfg.normalize()
	return cfg, cfg.Validate()
}

func (c *Config) normalize() {
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		c.GinMode = "release"
	}
}

// Validate reports every invalid setting, joined into one error.
func (c Config) Validate() error {
	return errors.Join(
		c.validateServer(),
		c.LLM.validate(c.WriteTimeout),
		c.Session.validate(),
		c.OTEL.validate(),
	)
}

func (c Config) validateServer() error {
	var errs []error
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic"))
	}
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive durations"))
	}
	if c.MaxHeaderBytes <= 0 {
		errs = append(errs, errors.New("MAX_HEADER_BYTES must be > 0"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH must not be empty"))
	}
	if c.RateRPS < 0 {
		errs = append(errs, errors.New("RATE_RPS must be >= 0"))
	}
	if c.RateBurst < 1 {
		errs = append(errs, errors.New("RATE_BURST must be >= 1"))
	}
	if c.Security.HSTSMaxAge < 0 {
		errs = append(errs, errors.New("HSTS_MAX_AGE must be >= 0"))
	}
	if c.IdempotencyTTL <= 0 {
		errs = append(errs, errors.New("IDEMPOTENCY_TTL must be > 0"))
	}
	return errors.Join(errs...)
}

// validate checks the provider settings. A streamed reply must finish
// before the server's write deadline, so writeTimeout has to exceed the
// completion timeout.
func (l LLMConfig) validate(writeTimeout time.Duration) error {
	var errs []error
	if l.Timeout <= 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT must be > 0"))
	} else if writeTimeout > 0 && writeTimeout <= l.Timeout {
		errs = append(errs, errors.New("WRITE_TIMEOUT must be greater than LLM_TIMEOUT"))
	}
	if !validTemperature(l.ChatTemperature) || !validTemperature(l.FeedbackTemperature) {
		errs = append(errs, errors.New("LLM temperatures must be in [0,2]"))
	}
	if l.ChatMaxTokens < 1 {
		errs = append(errs, errors.New("LLM_CHAT_MAX_TOKENS must be >= 1"))
	}
	if l.HistoryTokenBudget < 0 {
		errs = append(errs, errors.New("LLM_HISTORY_TOKEN_BUDGET must be >= 0"))
	}
	return errors.Join(errs...)
}

func validTemperature(t float64) bool { return t >= 0 && t <= 2 }

func (s SessionConfig) validate() error {
	var errs []error
	switch s.Backend {
	case "memory":
	case "redis":
		if strings.TrimSpace(s.RedisAddr) == "" {
			errs = append(errs, errors.New("REDIS_ADDR must not be empty with SESSION_BACKEND=redis"))
		}
	default:
		errs = append(errs, errors.New("SESSION_BACKEND must be one of: memory, redis"))
	}
	if s.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be > 0"))
	}
	if s.MaxEntries < 1 {
		errs = append(errs, errors.New("SESSION_MAX_ENTRIES must be >= 1"))
	}
	return errors.Join(errs...)
}

func (o OTELConfig) validate() error {
	if o.SampleRatio < 0 || o.SampleRatio > 1 {
		return errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return nil
}

// ---- env getters ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
