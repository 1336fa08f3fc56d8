package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// AnswerService is the remote question-answering collaborator.
// Implementations report transport failures as *domain.TransportError and
// malformed replies as *domain.ProtocolError.
type AnswerService interface {
	// Ask submits a question. Found is false when the service needs the user to disambiguate.
	Ask(ctx context.Context, question string) (domain.AskResult, error)

	// HandleResponse resolves an open disambiguation (provide an answer, search the web, confirm a preview).
	HandleResponse(ctx context.Context, req domain.HandleRequest) (domain.HandleResult, error)
}
