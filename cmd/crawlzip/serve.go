package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/crawlzip/internal/config"
	"github.com/nao1215/crawlzip/internal/firecrawl"
	"github.com/nao1215/crawlzip/internal/materialize"
	"github.com/nao1215/crawlzip/internal/pipeline"
	"github.com/nao1215/crawlzip/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// shutdown signal.
const shutdownTimeout = 30 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the password-protected crawl form",
		Long: `Serve starts the web interface.

  GET  /        crawl form (Basic auth)
  POST /crawl   crawl and download the result as a zip (Basic auth)
  GET  /health  health check

The password is read from ADMIN_PASSWORD, or from ADMIN_PASSWORD_HASH as a
bcrypt hash. Without either, protected routes answer 500.

Examples:
  ADMIN_PASSWORD=secret crawlzip serve
  crawlzip serve --addr 127.0.0.1:9000 --json-log`,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", config.DefaultListenAddress,
		"Listen address")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout of a single request to the crawl service")
	cmd.Flags().Bool("json-log", false,
		"Write logs as JSON")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	jsonLog, err := cmd.Flags().GetBool("json-log")
	if err != nil {
		return err
	}
	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, jsonLog, slog.LevelInfo)
	slog.SetDefault(logger)

	srv, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, srv.HTTPServer(cfg.ListenAddress), logger)
}

// newServer wires the crawl client, pipeline and web server from cfg.
// Missing secrets are reported when a request needs them, not here.
func newServer(cfg *config.Config, logger *slog.Logger) (*server.Server, error) {
	if cfg.APIKey == "" {
		logger.Warn("crawl requests will fail", "reason", firecrawl.ErrMissingAPIKey)
	}
	if !cfg.HasAdminSecret() {
		logger.Warn("admin password not configured; protected routes will answer 500")
	}

	client, err := firecrawl.NewClient(firecrawl.Options{
		APIKey:       cfg.APIKey,
		BaseURL:      cfg.APIURL,
		Timeout:      cfg.Timeout,
		PollInterval: cfg.PollInterval,
		ProxyAddress: cfg.ProxyAddress,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	m := materialize.New(materialize.WithLogger(logger))
	p := pipeline.NewDefaultPipeline(client, m, cfg.OutputDir, cfg.TempDir, true, logger)

	return server.New(p,
		server.Credentials{Password: cfg.AdminPassword, PasswordHash: cfg.AdminPasswordHash},
		server.WithLogger(logger),
		server.WithDefaults(cfg.CrawlDepth, cfg.MaxPages),
	), nil
}

// serve runs httpServer until ctx is done and then shuts it down.
func serve(ctx context.Context, httpServer *http.Server, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
