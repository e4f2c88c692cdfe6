package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/routra-dev/routra/internal/config"
	"github.com/routra-dev/routra/internal/dev"
	routraerrors "github.com/routra-dev/routra/internal/errors"
	"github.com/routra-dev/routra/pkg/dispatch"
	"github.com/routra-dev/routra/pkg/middleware"
	"github.com/routra-dev/routra/pkg/routectx"
	"github.com/routra-dev/routra/pkg/templates"
	"github.com/routra-dev/routra/pkg/view"
)

func serveCmd() *cobra.Command {
	var (
		port    int
		host    string
		devMode bool
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a template-only Routra site",
		Long: `Serve the project's template tree through the dispatcher.

Without registered view functions every page resolves to its fallback
template, so this serves <templateDir>/<app>/templates/<page>.html for
URLs of the form /app/page. Use --dev to watch templates and reload
connected browsers on change.

Examples:
  routra serve
  routra serve --port=8080
  routra serve --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, host, devMode, debug)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from routra.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from routra.json)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "Watch templates and hot-reload browsers")
	cmd.Flags().BoolVar(&debug, "debug", false, "Bypass the resolver cache")

	return cmd
}

func runServe(port int, host string, devMode, debug bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		routraerrors.PrintError(err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		routraerrors.PrintError(err)
		return err
	}

	// Command-line overrides
	if port > 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if debug || devMode {
		cfg.Debug = true
	}

	setupLogging()

	printBanner()
	fmt.Println()

	registry := view.NewRegistry()
	provider := templates.NewDirProvider(cfg.TemplatePath())
	cache := dispatch.NewCache()

	hooks := dispatch.NewHooks()
	hooks.SetEnabled(cfg.HooksEnabled())
	hooks.OnInternalRedirect(func(r *http.Request, ir *dispatch.InternalRedirect) {
		middleware.RecordInternalRedirect(ir.Module)
	})
	hooks.OnRedirect(func(r *http.Request, red *dispatch.Redirect) {
		middleware.RecordRedirect(red.Permanent)
	})

	dispatcher := dispatch.NewDispatcher(
		dispatch.NewFactory(registry, provider, nil),
		dispatch.WithCache(cache),
		dispatch.WithHooks(hooks),
		dispatch.WithDebug(cfg.Debug),
		dispatch.WithMaxRedirects(cfg.Dispatch.MaxRedirects),
	)

	r := chi.NewRouter()
	r.Use(middleware.OpenTelemetry())
	r.Use(middleware.Prometheus())
	r.Handle("/metrics", promhttp.Handler())
	r.Handle(cfg.StaticPrefix()+"*", http.StripPrefix(cfg.StaticPrefix(),
		http.FileServer(http.Dir(cfg.StaticPath()))))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if devMode {
		runner := dev.NewRunner(append([]string{cfg.TemplatePath()}, cfg.Dev.Watch...),
			cfg.Dev.Ignore, cache, provider)
		r.HandleFunc(dev.ReloadPath, runner.ReloadServer().HandleWebSocket)
		go runner.Run(ctx)
		info("watching %s for template changes", cfg.TemplatePath())
	}

	routectx.Mount(r, routectx.Config{
		DefaultApp:      cfg.Dispatch.DefaultApp,
		DefaultPage:     cfg.Dispatch.DefaultPage,
		DefaultFunction: cfg.Dispatch.DefaultFunction,
	}, dispatcher)

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: r,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
		srv.Shutdown(context.Background())
	}()

	success("serving %s on %s", cfg.TemplatePath(), cfg.URL())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return routraerrors.New("E141").Wrap(err)
	}
	return nil
}

// setupLogging installs a slog default that carries context attributes
// appended by the dispatcher.
func setupLogging() {
	handler := slogctx.NewHandler(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
		nil,
	)
	slog.SetDefault(slog.New(handler))
}
