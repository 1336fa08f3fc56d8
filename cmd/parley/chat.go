package main

import (
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/cli"
	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/aretw0/parley/pkg/runner"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the Answer Service in the terminal",
	Long: `Starts an interactive session. Type a question and press Enter;
use /help to list the commands for the follow-ups.

With --json, commands and results are exchanged as JSON Lines on stdin/stdout.
With --offline, an in-process knowledge base seeded from the stub config
answers instead of the remote service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		jsonMode, _ := cmd.Flags().GetBool("json")
		headless, _ := cmd.Flags().GetBool("headless")
		offline, _ := cmd.Flags().GetBool("offline")

		sm := runner.NewSignalManager(cmd.Context())
		defer sm.Stop()

		var appOpts []cli.AppOption
		if offline {
			appOpts = append(appOpts, cli.WithService(newKnowledgeBase(cfg)))
		}
		app, err := cli.NewApp(sm.Context(), cfg, appOpts...)
		if err != nil {
			return err
		}
		defer app.Close()

		interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))

		var handler runner.IOHandler
		switch {
		case jsonMode:
			handler = runner.NewJSONHandler(os.Stdin, os.Stdout)
			headless = true
		case interactive && !headless:
			target := cfg.BaseURL
			if offline {
				target = "offline"
			}
			tui.PrintBanner(os.Stdout, strings.TrimSpace(parley.Version), target)

			opts := []runner.TextHandlerOption{
				runner.WithTextHandlerLabels(tui.LabelStyler(termenv.ColorProfile())),
			}
			width, _, _ := term.GetSize(int(os.Stdout.Fd()))
			if render, err := tui.NewRenderer(width - 8); err == nil {
				opts = append(opts, runner.WithTextHandlerRenderer(render))
			} else {
				app.Logger.Debug("Markdown rendering disabled", "err", err)
			}
			handler = runner.NewTextHandler(os.Stdin, os.Stdout, opts...)
		default:
			handler = runner.NewTextHandler(os.Stdin, os.Stdout, runner.WithTextHandlerPrompt(""))
			headless = true
		}

		r := runner.NewRunner(
			runner.WithInputHandler(handler),
			runner.WithLogger(app.Logger),
			runner.WithHeadless(headless),
			runner.WithSignalManager(sm),
		)
		return r.Run(sm.Context(), app.Dialog)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().Bool("json", false, "Exchange JSON Lines instead of text")
	chatCmd.Flags().Bool("headless", false, "Plain output without banner, colors or prompt")
	chatCmd.Flags().Bool("offline", false, "Answer from an in-process knowledge base")
}
