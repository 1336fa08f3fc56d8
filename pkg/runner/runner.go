package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// DefaultGreeting is shown once before the first prompt unless headless.
const DefaultGreeting = "Ask me anything. Type /help for commands."

// Runner drives a Dialog from line-oriented input.
type Runner struct {
	Handler  IOHandler
	Logger   *slog.Logger
	Headless bool
	Greeting string
	Signals  *SignalManager
}

// NewRunner creates a runner. Without a handler it reads stdin and writes stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Greeting: DefaultGreeting,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// WithSignalManager lets the runner tell an interrupt apart from a closed input.
func WithSignalManager(sm *SignalManager) Option {
	return func(r *Runner) {
		r.Signals = sm
	}
}

// Run reads commands until /quit, end of input or ctx cancellation.
// After each action only the messages appended since the previous one are shown.
func (r *Runner) Run(ctx context.Context, dialog ports.Dialog) error {
	if dialog == nil {
		return errors.New("runner: dialog is required")
	}

	if !r.Headless && r.Greeting != "" {
		if err := r.Handler.SystemOutput(ctx, r.Greeting); err != nil {
			return err
		}
	}

	snap := dialog.Snapshot()
	shown := len(snap.Transcript)
	if shown > 0 {
		if err := r.Handler.Show(ctx, snap.Transcript, snap, nil); err != nil {
			return err
		}
	}

	for {
		cmd, err := r.Handler.Read(ctx)
		if err != nil {
			if r.Signals != nil {
				r.Signals.CheckRace()
			}
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				r.Logger.Debug("Runner stopped", "reason", err)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		switch cmd.Action {
		case ActionQuit:
			r.Logger.Debug("Runner stopped", "reason", "quit")
			return nil
		case ActionHelp:
			if err := r.Handler.SystemOutput(ctx, helpText); err != nil {
				return err
			}
			continue
		case ActionUnknown:
			if err := r.Handler.SystemOutput(ctx, fmt.Sprintf("Unknown command %q. Type /help.", cmd.Text)); err != nil {
				return err
			}
			continue
		}

		r.Logger.Debug("Command received", "action", cmd.Action)
		snap, actErr := r.dispatch(ctx, dialog, cmd)

		var fresh []domain.Message
		if shown < len(snap.Transcript) {
			fresh = snap.Transcript[shown:]
		}
		shown = len(snap.Transcript)

		if err := r.Handler.Show(ctx, fresh, snap, actErr); err != nil {
			return err
		}
	}
}

func (r *Runner) dispatch(ctx context.Context, dialog ports.Dialog, cmd Command) (domain.Snapshot, error) {
	switch cmd.Action {
	case ActionText:
		if dialog.Snapshot().Stage() == domain.StageAwaitingManualAnswer {
			return dialog.SubmitManualAnswer(ctx, cmd.Text)
		}
		return dialog.SubmitQuestion(ctx, cmd.Text)
	case ActionAsk:
		return dialog.SubmitQuestion(ctx, cmd.Text)
	case ActionChoose:
		snap, err := dialog.ChooseOption(ctx, cmd.Option)
		if err != nil || cmd.Option != domain.OptionProvideAnswer || cmd.Text == "" {
			return snap, err
		}
		if snap.Stage() != domain.StageAwaitingManualAnswer {
			return snap, nil
		}
		return dialog.SubmitManualAnswer(ctx, cmd.Text)
	case ActionAnswer:
		return dialog.SubmitManualAnswer(ctx, cmd.Text)
	case ActionConfirm:
		return dialog.ConfirmWebAnswer(ctx, cmd.Accept)
	case ActionJoke:
		return dialog.RequestAnotherJoke(ctx)
	case ActionDismiss:
		return dialog.Dismiss(ctx)
	}
	return dialog.Snapshot(), nil
}
