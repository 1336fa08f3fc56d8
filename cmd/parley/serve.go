package main

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/cli"
	httpAdapter "github.com/aretw0/parley/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dialog over HTTP",
	Long: `Starts a dialog and exposes its actions as a JSON API, with live
snapshot updates over Server-Sent Events at /events. The OpenAPI document
is served at /openapi.yaml and /metrics is enabled by metrics.enabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		offline, _ := cmd.Flags().GetBool("offline")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger, err := cli.NewLogger(cfg, nil)
		if err != nil {
			return err
		}
		streams := httpAdapter.NewStreamManager(logger)

		appOpts := []cli.AppOption{cli.WithHooks(streams.Hooks())}
		if offline {
			appOpts = append(appOpts, cli.WithService(newKnowledgeBase(cfg)))
		}
		app, err := cli.NewApp(ctx, cfg, appOpts...)
		if err != nil {
			return err
		}
		defer app.Close()

		handlerOpts := []httpAdapter.HandlerOption{
			httpAdapter.WithVersion(strings.TrimSpace(parley.Version)),
			httpAdapter.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
			httpAdapter.WithStreams(streams),
			httpAdapter.WithLogger(app.Logger),
		}
		if app.Metrics != nil {
			handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(app.Metrics.Handler()))
		}
		handler, err := httpAdapter.NewHandler(app.Dialog, handlerOpts...)
		if err != nil {
			return err
		}

		ln, err := listen(cfg.Server.Port)
		if err != nil {
			return err
		}
		srv := &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		app.Logger.Info("Dialog API ready", "answer_service", cfg.BaseURL, "offline", offline)
		return serveHTTP(ctx, app.Logger, srv, ln)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides config)")
	serveCmd.Flags().Bool("offline", false, "Answer from an in-process knowledge base")
}
