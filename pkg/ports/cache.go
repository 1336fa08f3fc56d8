package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// AnswerCache stores answered questions so repeated questions skip the Answer Service.
type AnswerCache interface {
	// Get returns the cached result and true on a hit.
	Get(ctx context.Context, question string) (domain.AskResult, bool, error)

	// Put stores a result for a question.
	Put(ctx context.Context, question string, result domain.AskResult) error

	// Invalidate removes any entry for a question. Missing entries are not an error.
	Invalidate(ctx context.Context, question string) error
}
