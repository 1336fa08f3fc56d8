package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// answerServer serves the Answer Service contract from any ports.AnswerService.
type answerServer struct {
	service ports.AnswerService
	logger  *slog.Logger
}

// AnswerHandlerOption configures NewAnswerHandler.
type AnswerHandlerOption func(*answerServer)

// WithAnswerLogger sets the structured logger of the answer handler.
func WithAnswerLogger(logger *slog.Logger) AnswerHandlerOption {
	return func(s *answerServer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewAnswerHandler exposes service over HTTP with the same JSON contract the
// Client speaks. Mount it under the base path clients are configured with.
func NewAnswerHandler(service ports.AnswerService, opts ...AnswerHandlerOption) http.Handler {
	s := &answerServer{service: service, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/ask", s.ask)
	r.Post("/handleResponse", s.handleResponse)
	return r
}

func (s *answerServer) ask(w http.ResponseWriter, r *http.Request) {
	var body askRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("Ask: Invalid request body", "err", err)
		return
	}
	if strings.TrimSpace(body.Question) == "" {
		writeError(w, s.logger, http.StatusBadRequest, "A question is required")
		return
	}

	res, err := s.service.Ask(r.Context(), body.Question)
	if err != nil {
		s.fail(w, "Ask", err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, res)
}

func (s *answerServer) handleResponse(w http.ResponseWriter, r *http.Request) {
	var body domain.HandleRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("HandleResponse: Invalid request body", "err", err)
		return
	}
	if opt, err := domain.ParseOption(string(body.Option)); err == nil {
		body.Option = opt
	}

	res, err := s.service.HandleResponse(r.Context(), body)
	if err != nil {
		s.fail(w, "HandleResponse", err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, res)
}

func (s *answerServer) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, memory.ErrUnknownOption), errors.Is(err, memory.ErrEmptyQuestion), domain.IsValidation(err):
		writeError(w, s.logger, http.StatusBadRequest, err.Error())
		s.logger.Warn(op+": Rejected", "err", err)
	default:
		// Upstream messages are forwarded as-is so clients can show them.
		msg := domain.UserMessage(err)
		if msg == "" {
			msg = "The answer service failed"
		}
		writeError(w, s.logger, http.StatusBadGateway, msg)
		s.logger.Error(op+" failed", "err", err)
	}
}
