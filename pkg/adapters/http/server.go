package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

//go:embed openapi.yaml
var openapiYAML []byte

// LoadOpenAPI parses and validates the embedded API description.
func LoadOpenAPI(ctx context.Context) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(openapiYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// Server exposes one dialog over HTTP.
type Server struct {
	Dialog  ports.Dialog
	Streams *StreamManager

	doc     *openapi3.T
	version string
	logger  *slog.Logger
}

type handlerConfig struct {
	version string
	origins []string
	metrics http.Handler
	streams *StreamManager
	logger  *slog.Logger
}

// HandlerOption configures NewHandler.
type HandlerOption func(*handlerConfig)

// WithVersion sets the application version reported by GET /info.
func WithVersion(v string) HandlerOption {
	return func(c *handlerConfig) {
		c.version = strings.TrimSpace(v)
	}
}

// WithAllowedOrigins sets the CORS origins. Defaults to any origin.
func WithAllowedOrigins(origins ...string) HandlerOption {
	return func(c *handlerConfig) {
		if len(origins) > 0 {
			c.origins = origins
		}
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) HandlerOption {
	return func(c *handlerConfig) {
		c.metrics = h
	}
}

// WithStreams shares a StreamManager whose Hooks are registered on the dialog,
// so SSE clients also see busy frames and actions taken by other front-ends.
func WithStreams(sm *StreamManager) HandlerOption {
	return func(c *handlerConfig) {
		c.streams = sm
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(c *handlerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewHandler creates the HTTP handler for the dialog.
func NewHandler(dialog ports.Dialog, opts ...HandlerOption) (http.Handler, error) {
	cfg := handlerConfig{
		version: "dev",
		origins: []string{"*"},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	doc, err := LoadOpenAPI(context.Background())
	if err != nil {
		return nil, err
	}
	if cfg.streams == nil {
		cfg.streams = NewStreamManager(cfg.logger)
	}
	s := &Server{
		Dialog:  dialog,
		Streams: cfg.streams,
		doc:     doc,
		version: cfg.version,
		logger:  cfg.logger,
	}
	s.Streams.Track(dialog.Snapshot())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(openapiYAML)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if cfg.metrics != nil {
		r.Handle("/metrics", cfg.metrics)
	}

	r.Get("/snapshot", s.GetSnapshot)
	r.Post("/questions", s.SubmitQuestion)
	r.Post("/options", s.ChooseOption)
	r.Post("/answers", s.SubmitManualAnswer)
	r.Post("/web-confirmations", s.ConfirmWebAnswer)
	r.Post("/jokes", s.RequestAnotherJoke)
	r.Post("/dismiss", s.Dismiss)
	r.Get("/events", s.SubscribeEvents)

	return r, nil
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Parley Dialog API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({ url: '/openapi.yaml', dom_id: '#swagger-ui' });
    };
</script>
</body>
</html>
`

type textBody struct {
	Text string `json:"text"`
}

type optionBody struct {
	Option string `json:"option"`
}

type confirmBody struct {
	Accept *bool `json:"accept"`
}

// rejection is the 422 reply for input the dialog refused.
type rejection struct {
	Message  string          `json:"message"`
	Field    string          `json:"field,omitempty"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]string{
		"app":         "parley-http",
		"version":     s.version,
		"api_version": apiVersion,
	})
}

// GetSnapshot handles GET /snapshot.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, s.Dialog.Snapshot())
}

// SubmitQuestion handles POST /questions.
func (s *Server) SubmitQuestion(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readText(w, r, "SubmitQuestion")
	if !ok {
		return
	}
	snap, err := s.Dialog.SubmitQuestion(actionContext(r), text)
	s.reply(w, snap, err)
}

// SubmitManualAnswer handles POST /answers.
func (s *Server) SubmitManualAnswer(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readText(w, r, "SubmitManualAnswer")
	if !ok {
		return
	}
	snap, err := s.Dialog.SubmitManualAnswer(actionContext(r), text)
	s.reply(w, snap, err)
}

// ChooseOption handles POST /options.
func (s *Server) ChooseOption(w http.ResponseWriter, r *http.Request) {
	var body optionBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("ChooseOption: Invalid request body", "err", err)
		return
	}
	opt, err := domain.ParseOption(body.Option)
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := s.Dialog.ChooseOption(actionContext(r), opt)
	s.reply(w, snap, err)
}

// ConfirmWebAnswer handles POST /web-confirmations.
func (s *Server) ConfirmWebAnswer(w http.ResponseWriter, r *http.Request) {
	var body confirmBody
	if err := decodeJSON(w, r, &body); err != nil || body.Accept == nil {
		writeError(w, s.logger, http.StatusBadRequest, "Body must carry a boolean accept field")
		s.logger.Warn("ConfirmWebAnswer: Invalid request body", "err", err)
		return
	}
	snap, err := s.Dialog.ConfirmWebAnswer(actionContext(r), *body.Accept)
	s.reply(w, snap, err)
}

// RequestAnotherJoke handles POST /jokes.
func (s *Server) RequestAnotherJoke(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Dialog.RequestAnotherJoke(actionContext(r))
	s.reply(w, snap, err)
}

// Dismiss handles POST /dismiss.
func (s *Server) Dismiss(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Dialog.Dismiss(actionContext(r))
	s.reply(w, snap, err)
}

// SubscribeEvents handles GET /events (SSE). The first data frame carries the
// full snapshot; every later frame is a SnapshotDiff. The optional watch query
// parameter (comma separated: transcript, pending, request, affordances)
// filters frames.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	if initial, err := json.Marshal(domain.Diff(nil, ptr(s.Dialog.Snapshot()))); err == nil {
		fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", initial)
	}
	flusher.Flush()
	s.logger.Info("SSE: Client subscribed")

	watch := parseWatch(r.URL.Query().Get("watch"))
	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !watch.keep(msg) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) readText(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	var body textBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn(op+": Invalid request body", "err", err)
		return "", false
	}
	clean, err := runner.SanitizeInput(body.Text)
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, fmt.Sprintf("Invalid input: %v", err))
		s.logger.Warn(op+": Input rejected", "err", err, "size", len(body.Text))
		return "", false
	}
	return clean, true
}

func (s *Server) reply(w http.ResponseWriter, snap domain.Snapshot, err error) {
	s.Streams.Track(snap)

	var ve *domain.ValidationError
	switch {
	case err == nil:
		writeJSON(w, s.logger, http.StatusOK, snap)
	case errors.As(err, &ve):
		writeJSON(w, s.logger, http.StatusUnprocessableEntity, rejection{Message: ve.Reason, Field: ve.Field, Snapshot: snap})
	default:
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		s.logger.Error("Dialog action failed", "err", err)
	}
}

// actionContext detaches the action from the client connection: a dropped
// client must not cancel a request whose outcome other subscribers will see.
func actionContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

type watchFilter map[string]bool

func parseWatch(raw string) watchFilter {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	f := watchFilter{}
	for _, field := range strings.Split(raw, ",") {
		f[strings.TrimSpace(field)] = true
	}
	return f
}

func (f watchFilter) keep(msg string) bool {
	if len(f) == 0 {
		return true
	}
	var diff domain.SnapshotDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	return (f["transcript"] && len(diff.Appended) > 0) ||
		(f["pending"] && diff.Pending != nil) ||
		(f["request"] && diff.Request != nil) ||
		(f["affordances"] && diff.Affordances != nil)
}

func ptr[T any](v T) *T {
	return &v
}
