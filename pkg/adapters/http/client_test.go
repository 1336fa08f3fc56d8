package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStubService serves a knowledge base under /api, the way `parley stub` does.
func newStubService(t *testing.T, kb *memory.KnowledgeBase) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Mount("/api", NewAnswerHandler(kb))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_RejectsBadURLs(t *testing.T) {
	for _, raw := range []string{"", "localhost:3000", "ftp://example.com", "http://"} {
		_, err := NewClient(raw)
		assert.Error(t, err, raw)
	}

	c, err := NewClient(" http://localhost:3000/api/ ")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/api", c.BaseURL())
}

func TestClient_RoundTrip(t *testing.T) {
	kb := memory.NewKnowledgeBase(
		memory.WithAnswers(map[string]string{"2+2": "4"}),
		memory.WithWebSearcher(memory.StaticSearcher{"capital of mars?": "Mars has no capital."}),
	)
	srv := newStubService(t, kb)
	client, err := NewClient(srv.URL + "/api")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		res, err := client.Ask(ctx, "2+2")
		require.NoError(t, err)
		assert.Equal(t, domain.AskResult{Found: true, Answer: "4"}, res)
	})

	t.Run("Not found offers options", func(t *testing.T) {
		res, err := client.Ask(ctx, "capital of Mars?")
		require.NoError(t, err)
		assert.False(t, res.Found)
		assert.Equal(t, []string{"provideAnswer", "searchWeb"}, res.Options)
	})

	t.Run("Search, confirm, ask again", func(t *testing.T) {
		res, err := client.HandleResponse(ctx, domain.SearchWeb("capital of Mars?"))
		require.NoError(t, err)
		assert.Equal(t, "Mars has no capital.", res.Preview)

		res, err = client.HandleResponse(ctx, domain.ConfirmWeb("capital of Mars?", true))
		require.NoError(t, err)
		assert.True(t, res.Success)

		ask, err := client.Ask(ctx, "capital of Mars?")
		require.NoError(t, err)
		assert.Equal(t, "Mars has no capital.", ask.Answer)
	})

	t.Run("Unknown option is a 400", func(t *testing.T) {
		_, err := client.HandleResponse(ctx, domain.HandleRequest{Question: "q", Option: "teleport"})
		var te *domain.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusBadRequest, te.Status)
		assert.Contains(t, te.Message, "unknown option")
	})
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		transport bool
		message   string
	}{
		{name: "Server error with message", status: 503, body: `{"message":"Warming up"}`, transport: true, message: "Warming up"},
		{name: "Server error without body", status: 500, body: ``, transport: true},
		{name: "Undecodable body", status: 200, body: `<html>`, transport: false},
		{name: "Missing found", status: 200, body: `{"answer":"4"}`, transport: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/ask", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := NewClient(srv.URL)
			require.NoError(t, err)
			_, err = client.Ask(context.Background(), "2+2")
			require.Error(t, err)

			var te *domain.TransportError
			var pe *domain.ProtocolError
			if tt.transport {
				require.ErrorAs(t, err, &te)
				assert.Equal(t, tt.status, te.Status)
				assert.Equal(t, tt.message, domain.UserMessage(err))
			} else {
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, OpAsk, pe.Op)
			}
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, err := NewClient(srv.URL, WithClientTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = client.Ask(context.Background(), "slow")
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.Status)
}

func TestClient_ContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.HandleResponse(ctx, domain.SearchWeb("q"))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
