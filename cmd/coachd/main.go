// Command coachd serves the advisor practice API.
//
//	coachd            # same as "coachd serve"
//	coachd serve      # run the HTTP server
//	coachd migrate    # create or update the SQLite schema and exit
//
// Configuration comes from the environment; a .env file in the working
// directory is loaded first when present.
//
// @title                      Advisor Coach API
// @version                    1.0
// @description                Role-play practice for financial advisors: streamed persona replies, coaching feedback and a persona library.
// @BasePath                   /api/v1
// @securityDefinitions.apikey UserID
// @in                         header
// @name                       X-User-ID
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-advisor-coach/internal/config"
	"github.com/tbourn/go-advisor-coach/internal/sysutil"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "coachd",
		Short:         "Advisor practice coach API server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	serve := newServeCommand()
	root.AddCommand(serve, newMigrateCommand())
	root.RunE = serve.RunE
	return root
}

// loadConfig reads the configuration and sets up the global logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	sysutil.SetupLogging(os.Stdout, cfg.LogLevel, cfg.LogPretty)
	return cfg, nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg.DBPath)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			log.Info().Str("db", cfg.DBPath).Msg("schema up to date")
			return nil
		},
	}
}
