package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/internal/testutils"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	d, _ := testutils.NewDialog(t, memory.WithWebSearcher(testutils.Mars()))
	return NewServer(d, WithVersion("test"))
}

func TestServer_WebSearchFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	resp, err := s.handleSubmitQuestion(ctx, req, map[string]any{"text": "Capital of Mars?"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageAwaitingOptionChoice, resp.Snapshot.Stage())
	assert.Equal(t, domain.DefaultCopy().Disambiguation, resp.Reply)

	resp, err = s.handleChooseOption(ctx, req, map[string]any{"option": "searchWeb"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageAwaitingWebConfirmation, resp.Snapshot.Stage())
	assert.Contains(t, resp.Reply, "Mars has no capital")

	resp, err = s.handleConfirmWebAnswer(ctx, req, map[string]any{"accept": true})
	require.NoError(t, err)
	assert.Equal(t, domain.StageNone, resp.Snapshot.Stage())

	resp, err = s.handleSubmitQuestion(ctx, req, map[string]any{"text": "capital of mars?"})
	require.NoError(t, err)
	assert.Equal(t, "Mars has no capital", resp.Reply)
}

func TestServer_ManualAnswerAndDismiss(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleSubmitQuestion(ctx, req, map[string]any{"text": "Who is Ada?"})
	require.NoError(t, err)
	resp, err := s.handleChooseOption(ctx, req, map[string]any{"option": "provide_answer"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageAwaitingManualAnswer, resp.Snapshot.Stage())

	resp, err = s.handleSubmitManualAnswer(ctx, req, map[string]any{"text": "  "})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCopy().EmptyAnswer, resp.Rejected)

	resp, err = s.handleDismiss(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StageNone, resp.Snapshot.Stage())
	assert.Equal(t, domain.DefaultCopy().Dismissed, resp.Reply)
}

func TestServer_Jokes(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleSubmitQuestion(ctx, mcp.CallToolRequest{}, map[string]any{"text": "tell me a joke"})
	require.NoError(t, err)
	assert.True(t, resp.Snapshot.Allows(domain.AffordanceAnotherJoke))

	before := len(resp.Snapshot.Transcript)
	resp, err = s.handleAnotherJoke(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Greater(t, len(resp.Snapshot.Transcript), before)
}

func TestServer_BadArguments(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleChooseOption(ctx, mcp.CallToolRequest{}, map[string]any{"option": "phoneAFriend"})
	assert.Error(t, err)

	_, err = s.handleConfirmWebAnswer(ctx, mcp.CallToolRequest{}, map[string]any{"accept": "yes"})
	assert.Error(t, err)

	_, err = s.handleSubmitQuestion(ctx, mcp.CallToolRequest{}, map[string]any{"text": strings.Repeat("a", 200_000)})
	assert.Error(t, err)

	resp, err := s.handleSnapshot(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Snapshot.Transcript)
}

func TestServer_TranscriptResource(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handleSubmitQuestion(context.Background(), mcp.CallToolRequest{}, map[string]any{"text": "Who is Ada?"})
	require.NoError(t, err)

	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "resources/read",
		"params":  map[string]any{"uri": TranscriptURI},
	})
	require.NoError(t, err)

	out := s.MCPServer().HandleMessage(context.Background(), msg)
	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `Who is Ada?`)
	assert.Contains(t, string(raw), TranscriptURI)
}
