package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// Dialog is the driving port used by front-ends (terminal, HTTP, MCP).
// Every action returns the snapshot after it settled; the only error returned
// is *domain.ValidationError.
type Dialog interface {
	SubmitQuestion(ctx context.Context, text string) (domain.Snapshot, error)
	ChooseOption(ctx context.Context, opt domain.Option) (domain.Snapshot, error)
	SubmitManualAnswer(ctx context.Context, text string) (domain.Snapshot, error)
	ConfirmWebAnswer(ctx context.Context, accept bool) (domain.Snapshot, error)
	RequestAnotherJoke(ctx context.Context) (domain.Snapshot, error)
	Dismiss(ctx context.Context) (domain.Snapshot, error)
	Snapshot() domain.Snapshot
}
