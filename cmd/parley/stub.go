package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/aretw0/parley/internal/cli"
	httpAdapter "github.com/aretw0/parley/pkg/adapters/http"
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run an in-memory Answer Service",
	Long: `Serves POST /api/ask and POST /api/handleResponse from an in-memory
knowledge base seeded with stub.answers and stub.web. It learns what users
teach it and tells jokes, which makes it a local stand-in for the real service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Stub.Port, _ = cmd.Flags().GetInt("port")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger, err := cli.NewLogger(cfg, nil)
		if err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Mount("/api", httpAdapter.NewAnswerHandler(newKnowledgeBase(cfg), httpAdapter.WithAnswerLogger(logger)))

		ln, err := listen(cfg.Stub.Port)
		if err != nil {
			return err
		}
		srv := &http.Server{
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}
		logger.Info("Answer Service stub ready", "answers", len(cfg.Stub.Answers), "web", len(cfg.Stub.Web))
		return serveHTTP(ctx, logger, srv, ln)
	},
}

func init() {
	rootCmd.AddCommand(stubCmd)
	stubCmd.Flags().IntP("port", "p", 8081, "Port to listen on (overrides config)")
}
