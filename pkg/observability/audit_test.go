package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := observability.AuditHooks(slog.New(slog.NewJSONHandler(&buf, nil)))

	hooks.OnRequestEnd(context.Background(), &domain.RequestEvent{
		Op: "ask", Outcome: domain.OutcomeTransportErr, Err: errors.New("refused"),
	})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "answer_service_call", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "transport_error", rec["outcome"])
	assert.Nil(t, hooks.OnMessage, "only stage and request events are audited")
}
