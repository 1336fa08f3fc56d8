package observability_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m, err := observability.NewMetrics()
	require.NoError(t, err)

	ctrl := runtime.NewController(memory.NewKnowledgeBase(), runtime.WithLifecycleHooks(m.Hooks()))
	ctx := context.Background()

	_, err = ctrl.SubmitQuestion(ctx, "capital of Mars?")
	require.NoError(t, err)
	_, err = ctrl.ChooseOption(ctx, domain.OptionProvideAnswer)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Messages.WithLabelValues("user", "plain")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Messages.WithLabelValues("bot", "disambiguation_prompt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Stages.WithLabelValues("none", "awaiting_option_choice")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Stages.WithLabelValues("awaiting_option_choice", "awaiting_manual_answer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("ask", "ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Settlements.WithLabelValues(runtime.ActionChooseOption)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestMetrics_Handler(t *testing.T) {
	m, err := observability.NewMetrics()
	require.NoError(t, err)

	m.Hooks().OnRequestEnd(context.Background(), &domain.RequestEvent{
		Op: "ask", Outcome: domain.OutcomeTransportErr, Duration: 20 * time.Millisecond, Err: errors.New("x"),
	})

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `parley_answer_service_requests_total{op="ask",outcome="transport_error"} 1`)
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
