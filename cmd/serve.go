package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/sitepress/internal/config"
	"github.com/conneroisu/sitepress/internal/pipeline"
	"github.com/conneroisu/sitepress/internal/server"
	"github.com/conneroisu/sitepress/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve [entry.html]",
	Short: "Start the development server with live reload",
	Long: `Serve the latest build over HTTP and rebuild whenever a contributing file
changes. Every served page gets a live-reload script that reloads the browser
after each rebuild.

Examples:
  sitepress serve index.html
  sitepress serve index.html --port 3000
  sitepress serve index.html --fallback-404   # SPA routing fallback`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: bindServeFlags,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().String("prefix", "", "Public URL prefix for rewritten references")
	serveCmd.Flags().Bool("fallback-404", false, "Serve the page artifact for unmatched routes")
}

func bindServeFlags(cmd *cobra.Command, _ []string) error {
	return bindFlags(cmd, map[string]string{
		"server.port":        "port",
		"server.host":        "host",
		"build.path_prefix":  "prefix",
		"build.fallback_404": "fallback-404",
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	entry, err := resolveEntrypoint(cfg, args)
	if err != nil {
		return err
	}

	logger := newLogger()
	store := server.NewStore()
	hub := server.NewHub(logger, cfg.Server.AllowedOrigins)
	srv := server.New(cfg.Server.Host, cfg.Server.Port, store, hub, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debounce := time.Duration(cfg.Development.DebounceMs) * time.Millisecond
	loop := pipeline.NewWatchLoop(entry, pipeline.Options{
		PathPrefix:        cfg.Build.PathPrefix,
		MainAsFallback404: cfg.Build.Fallback404,
		InsertLiveReload:  cfg.Development.LiveReload,
		LiveReloadPort:    cfg.Development.LiveReloadPort,
		Workers:           cfg.Build.Workers,
		OnBuild: func(build *pipeline.Build) {
			store.Commit(build)
			hub.Broadcast(ctx)
		},
	}, cfg.Toolchain(), watcher.New(debounce, logger), logger)

	fmt.Printf("serving %s on http://%s\n", entry, srv.Addr())

	errCh := make(chan error, 2)
	go func() { errCh <- srv.Start(ctx) }()
	go func() { errCh <- loop.Run(ctx, store.Collect) }()

	err = <-errCh
	stop()
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
