/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seckatie/clipd/internal/config"
	"github.com/seckatie/clipd/internal/core/cache"
	"github.com/seckatie/clipd/internal/core/db"
	"github.com/seckatie/clipd/internal/core/export"
	"github.com/seckatie/clipd/internal/core/web"
	"github.com/seckatie/clipd/internal/logger"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clipd",
	Short: "A small note and bookmark manager with a JSON API",
	Long: `clipd stores notes and bookmarks ("clips") in SQLite or PostgreSQL and
serves a JSON API to create, search, tag, update, delete and export them.

Running clipd without a subcommand starts the API server. Settings come from
the environment (DATABASE_URL, HOST, PORT, CLIPD_*) or a --config file, and
the flags below override both.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML or .env config file")
	rootCmd.PersistentFlags().StringP("db", "d", "", "Database URL, e.g. sqlite:///clipd.db or postgres://... (overrides DATABASE_URL)")
	rootCmd.Flags().IntP("port", "p", 5000, "Port to listen on (overrides PORT)")
	rootCmd.Flags().String("host", "localhost", "Host to listen on (overrides HOST)")

	rootCmd.SetUsageTemplate(rootCmd.UsageTemplate() + "\nEnvironment:\n" + config.Usage() + "\n")
}

// loadConfig reads the configuration and applies any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read --config: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if f := cmd.Flags().Lookup("db"); f != nil && f.Changed {
		cfg.Database.URL = f.Value.String()
	}
	if f := cmd.Flags().Lookup("host"); f != nil && f.Changed {
		cfg.HTTP.Host = f.Value.String()
	}
	if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
		port, err := cmd.Flags().GetInt("port")
		if err != nil {
			return nil, fmt.Errorf("failed to read --port: %w", err)
		}
		cfg.HTTP.Port = port
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (logger.Logger, error) {
	l, err := logger.New(cfg.Logging.Level, cfg.Logging.Pretty)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return l, nil
}

// openDB connects to the configured database and applies migrations.
func openDB(cfg *config.Config, l logger.Logger) (*db.DB, error) {
	database, err := db.Open(cfg.Database.URL, db.WithLogger(l))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.Migrate(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	l.Info("database ready")
	return database, nil
}

func newRenderer(cfg *config.Config, l logger.Logger) *export.ChromeRenderer {
	return export.NewChromeRenderer(export.ChromeOptions{
		ChromePath: cfg.PDF.ChromePath,
		Timeout:    cfg.PDF.Timeout,
		Logger:     l,
	})
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	l, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	database, err := openDB(cfg, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			l.Warn("failed to close database", logger.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := web.Options{
		Logger:      l,
		MaxPerPage:  cfg.HTTP.MaxPerPage,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	}

	renderer := newRenderer(cfg, l)
	if _, err := renderer.ExecPath(); err != nil {
		l.Warn("PDF export will be unavailable", logger.Error(err))
	}
	opts.Renderer = renderer

	if cfg.Redis.Enabled() {
		tagCache, err := cache.New(ctx, cfg.Redis, database, l)
		if err != nil {
			l.Warn("tag cache disabled", logger.Error(err))
		} else {
			defer func() { _ = tagCache.Close() }()
			tagCache.Attach(database)
			opts.Tags = tagCache
			l.Info("tag cache enabled", logger.String("redis_addr", cfg.Redis.Addr))
		}
	}

	server := web.NewServer(cfg.HTTP.Address(), database, opts)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		l.Info("shutting down gracefully")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
