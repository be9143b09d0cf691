package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/fragment/internal/config"
	"github.com/vango-dev/fragment/internal/errors"
	"github.com/vango-dev/fragment/pkg/bridge"
	"github.com/vango-dev/fragment/pkg/middleware"
	"github.com/vango-dev/fragment/pkg/partial"
	"github.com/vango-dev/fragment/pkg/pattern"
	"github.com/vango-dev/fragment/pkg/router"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
		host       string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the WebSocket bridge",
		Long: `Serve the bridge for the routes in fragment.json.

Browsers load the client script, connect to the bridge and report every
hashchange. Matching routes load their partial and the server pushes it
back into the page.

Endpoints (paths from fragment.json):
  /ws           bridge WebSocket
  /fragment.js  client script
  /metrics      Prometheus metrics (when telemetry.metrics is on)
  /             static files (when server.static is set)

Examples:
  fragment serve
  fragment serve --config ./site/fragment.json --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			return runServe(cmd, cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to fragment.json (default: search from working directory)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from fragment.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from fragment.json)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log dispatch decisions")

	return cmd
}

// loadServeConfig reads an explicit config file, or searches from the
// working directory and falls back to defaults when none exists.
func loadServeConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.LoadFromWorkingDir()
	if errors.HasCode(err, "E121") {
		return config.New(), nil
	}
	return cfg, err
}

func runServe(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	handler, srv, err := buildHandler(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	w := cmd.OutOrStdout()
	printBanner(w)
	success(w, "Serving %d routes at %s", len(cfg.Routes), cfg.URL())
	info(w, "bridge:  %s%s", cfg.URL(), cfg.Server.WSPath)
	info(w, "client:  %s%s", cfg.URL(), cfg.Server.ClientPath)
	if cfg.Telemetry.Metrics {
		info(w, "metrics: %s%s", cfg.URL(), cfg.Server.MetricsPath)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil

	case <-sigCh:
		fmt.Fprintln(w, "\n  Shutting down...")
		srv.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// loaderOptions returns the partial sources and hooks for cfg.
func loaderOptions(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]partial.Option, error) {
	opts := []partial.Option{
		partial.WithLogger(logger),
		partial.WithTimeout(cfg.PartialTimeout()),
		partial.WithBaseURL(cfg.Partials.BaseURL),
		partial.WithSource("http", &partial.HTTPSource{}),
	}
	if root := cfg.PartialRoot(); root != "" {
		opts = append(opts, partial.WithSource("file", partial.NewFileSource(root)))
	}
	if cfg.Partials.S3.Region != "" {
		client, err := newS3Client(ctx, cfg.Partials.S3)
		if err != nil {
			return nil, err
		}
		opts = append(opts, partial.WithSource("s3", partial.NewS3Source(client)))
	}
	if cfg.Telemetry.Metrics {
		opts = append(opts, partial.WithHook(middleware.RecordPartialLoad))
	}
	return opts, nil
}

// routerOptions returns the per-connection router options for cfg.
// Middleware runs in registration order, so Recover goes last: a panic
// becomes an E106 error before metrics and tracing see it.
func routerOptions(cfg *config.Config, logger *slog.Logger) []router.Option {
	opts := []router.Option{
		router.WithLogger(logger),
		router.WithStrict(cfg.Router.Strict),
	}
	if cfg.Telemetry.Metrics {
		opts = append(opts, router.WithMiddleware(middleware.Prometheus()))
	}
	if cfg.Telemetry.Tracing {
		opts = append(opts, router.WithMiddleware(
			middleware.OpenTelemetry(middleware.WithTracerName(cfg.Telemetry.TracerName)),
		))
	}
	return append(opts, router.WithMiddleware(router.Recover()))
}

// buildHandler assembles the HTTP handler for cfg: bridge, client script,
// metrics and static files.
func buildHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger) (http.Handler, *bridge.Server, error) {
	loaderOpts, err := loaderOptions(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	routerOpts := routerOptions(cfg, logger)

	routes := cfg.Routes
	srv := bridge.New(func(c *bridge.Conn) error {
		for _, rc := range routes {
			h, err := c.Router().On(rc.Pattern, logRoute(logger, rc.Pattern))
			if err != nil {
				return err
			}
			h.Load(rc.Target, rc.URL, nil)
		}
		return nil
	},
		bridge.WithLogger(logger),
		bridge.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		bridge.WithRouterOptions(routerOpts...),
		bridge.WithLoaderOptions(loaderOpts...),
	)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Handle(cfg.Server.WSPath, srv)
	r.Get(cfg.Server.ClientPath, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		fmt.Fprint(w, bridge.ClientScript)
	})
	if cfg.Telemetry.Metrics {
		r.Handle(cfg.Server.MetricsPath, promhttp.Handler())
	}
	if dir := cfg.StaticDir(); dir != "" {
		r.Handle("/*", http.FileServer(http.Dir(dir)))
	}

	return r, srv, nil
}

// logRoute is the handler for configured routes: the partial does the work.
func logRoute(logger *slog.Logger, raw string) router.Handler {
	return func(ctx context.Context, params map[string]string, m *pattern.MatchResult) error {
		logger.Debug("route", "pattern", raw, "fragment", m.Path, "params", params)
		return nil
	}
}

// newS3Client builds an S3 client with the SDK's default credential chain
// (environment, shared config, SSO, instance roles) in the configured region.
func newS3Client(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, errors.New("E122").
			Wrap(err).
			WithDetail("Failed to load AWS configuration for the S3 partial source")
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}
