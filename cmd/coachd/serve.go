package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-advisor-coach/docs"
	"github.com/tbourn/go-advisor-coach/internal/config"
	"github.com/tbourn/go-advisor-coach/internal/domain"
	httpapi "github.com/tbourn/go-advisor-coach/internal/http"
	"github.com/tbourn/go-advisor-coach/internal/llm"
	"github.com/tbourn/go-advisor-coach/internal/observability"
	"github.com/tbourn/go-advisor-coach/internal/playbook"
	"github.com/tbourn/go-advisor-coach/internal/repo"
	"github.com/tbourn/go-advisor-coach/internal/services"
	"github.com/tbourn/go-advisor-coach/internal/session"
)

const shutdownGrace = 15 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := openDB(cfg.DBPath)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	client, err := llm.New(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	})
	switch {
	case err != nil:
		// Keep serving: provider routes answer client_init_failed.
		log.Error().Err(err).Msg("completion client unusable")
	case client.Ready() != nil:
		log.Warn().Err(client.Ready()).Msg("provider routes will fail until a key is configured")
	}

	store, err := session.New(ctx, session.Options{
		Backend:       cfg.Session.Backend,
		TTL:           cfg.Session.TTL,
		MaxEntries:    cfg.Session.MaxEntries,
		RedisAddr:     cfg.Session.RedisAddr,
		RedisPassword: cfg.Session.RedisPassword,
		RedisDB:       cfg.Session.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer store.Close()

	gin.SetMode(cfg.GinMode)
	docs.SwaggerInfo.BasePath = cfg.APIBasePath

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:        db,
		LLM:       client,
		Sessions:  store,
		Playbook:  loadPlaybook(cfg.PlaybookPath),
		Templates: loadTemplates(cfg.PersonaTemplatesPath),
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("base_path", cfg.APIBasePath).
			Str("session_backend", cfg.Session.Backend).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func openDB(path string) (*gorm.DB, error) {
	db, err := repo.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", path, err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// loadPlaybook returns nil when no path is configured or the file is
// unusable; feedback then runs without guidance.
func loadPlaybook(path string) *playbook.Playbook {
	if path == "" {
		return nil
	}
	pb, err := playbook.Load(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("playbook not loaded")
		return nil
	}
	log.Info().Int("tips", pb.Len()).Msg("playbook loaded")
	return pb
}

// loadTemplates returns nil (the built-in presets) unless a valid file is
// configured.
func loadTemplates(path string) []domain.Persona {
	if path == "" {
		return nil
	}
	ts, err := services.LoadTemplates(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("persona templates not loaded, using presets")
		return nil
	}
	return ts
}
