package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// Operation names reported in errors.
const (
	OpAsk            = "ask"
	OpHandleResponse = "handle_response"
)

// maxBodySize caps how much of a reply body is read.
const maxBodySize = 1 << 20

// Client is the HTTP Answer Service client. It speaks the JSON contract
// POST {base}/ask and POST {base}/handleResponse.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

var _ ports.AnswerService = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithClientTimeout bounds every round trip, on top of the caller's context.
func WithClientTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithClientLogger sets the structured logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the service rooted at baseURL
// (e.g. http://localhost:3000/api).
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: missing host", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type askRequest struct {
	Question string `json:"question"`
}

// askReply mirrors domain.AskResult with Found optional so its absence can be detected.
type askReply struct {
	Found   *bool    `json:"found"`
	Answer  string   `json:"answer"`
	Message string   `json:"message"`
	Options []string `json:"options"`
}

// Ask implements ports.AnswerService.
func (c *Client) Ask(ctx context.Context, question string) (domain.AskResult, error) {
	var reply askReply
	if err := c.post(ctx, OpAsk, "/ask", askRequest{Question: question}, &reply); err != nil {
		return domain.AskResult{}, err
	}
	if reply.Found == nil {
		return domain.AskResult{}, &domain.ProtocolError{Op: OpAsk, Reason: "reply has no found field"}
	}
	return domain.AskResult{
		Found:   *reply.Found,
		Answer:  reply.Answer,
		Message: reply.Message,
		Options: reply.Options,
	}, nil
}

// HandleResponse implements ports.AnswerService.
func (c *Client) HandleResponse(ctx context.Context, req domain.HandleRequest) (domain.HandleResult, error) {
	var reply domain.HandleResult
	if err := c.post(ctx, OpHandleResponse, "/handleResponse", req, &reply); err != nil {
		return domain.HandleResult{}, err
	}
	return reply, nil
}

func (c *Client) post(ctx context.Context, op, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &domain.TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}
	c.logger.Debug("Answer Service replied", "op", op, "status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.TransportError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: messageOf(body),
			Err:     fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.ProtocolError{Op: op, Reason: "undecodable reply body", Err: err}
	}
	return nil
}

// messageOf extracts a user-facing message from an error body, if the service sent one.
func messageOf(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}
