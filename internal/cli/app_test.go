package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/internal/config"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
)

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger, err := NewLogger(cfg, &buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "error", "boom")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"err":"boom"`)

	cfg.Log.Level = "loud"
	_, err = NewLogger(cfg, &buf)
	assert.Error(t, err)
}

func TestNewApp_MemoryCacheAndMetrics(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = config.CacheMemory
	cfg.Metrics.Enabled = true
	cfg.Locale = "es"

	kb := memory.NewKnowledgeBase(memory.WithAnswers(map[string]string{"hola": "¡Hola!"}))
	var stages []string
	app, err := NewApp(context.Background(), cfg,
		WithService(kb),
		WithLogOutput(&bytes.Buffer{}),
		WithHooks(domain.LifecycleHooks{
			OnStageChange: func(_ context.Context, ev *domain.StageEvent) {
				stages = append(stages, string(ev.To))
			},
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })

	ctx := context.Background()
	_, err = app.Dialog.SubmitQuestion(ctx, "Hola")
	require.NoError(t, err)
	snap, err := app.Dialog.SubmitQuestion(ctx, "hola")
	require.NoError(t, err)

	last, _ := snap.LastMessage()
	assert.Equal(t, "¡Hola!", last.Text)

	cache, ok := app.Cache.(*memory.Cache)
	require.True(t, ok)
	assert.Equal(t, 1, cache.Len())

	require.NotNil(t, app.Metrics)
	assert.Equal(t, float64(2), testutil.ToFloat64(app.Metrics.Requests.WithLabelValues("ask", domain.OutcomeOK)), "cache hits still count as calls")

	snap, err = app.Dialog.SubmitQuestion(ctx, "¿Quién es Ada?")
	require.NoError(t, err)
	assert.Equal(t, domain.SpanishCopy().Disambiguation, mustLast(t, snap).Text)
	assert.Equal(t, []string{string(domain.StageAwaitingOptionChoice)}, stages)
}

func TestNewApp_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Cache.Backend = config.CacheRedis
	cfg.Cache.Redis.Addr = mr.Addr()

	kb := memory.NewKnowledgeBase(memory.WithAnswers(map[string]string{"hello": "Hi"}))
	app, err := NewApp(context.Background(), cfg, WithService(kb), WithLogOutput(&bytes.Buffer{}))
	require.NoError(t, err)

	_, err = app.Dialog.SubmitQuestion(context.Background(), "hello")
	require.NoError(t, err)

	keys := mr.Keys()
	assert.True(t, containsPrefix(keys, "parley:answer:"), "answer cached in redis: %v", keys)
	assert.NoError(t, app.Close())
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Cache.Backend = config.CacheRedis
	cfg.Cache.Redis.Addr = addr

	_, err := NewApp(context.Background(), cfg, WithService(memory.NewKnowledgeBase()), WithLogOutput(&bytes.Buffer{}))
	assert.ErrorContains(t, err, "redis cache")
}

func TestNewApp_HTTPBaseURL(t *testing.T) {
	cfg := config.Default()
	cfg.BaseURL = "not a url"
	_, err := NewApp(context.Background(), cfg, WithLogOutput(&bytes.Buffer{}))
	assert.Error(t, err)

	cfg.BaseURL = "http://localhost:1/api"
	app, err := NewApp(context.Background(), cfg, WithLogOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.Nil(t, app.Cache)
	assert.Nil(t, app.Metrics)
	assert.NoError(t, app.Close())
}

func mustLast(t *testing.T, snap domain.Snapshot) domain.Message {
	t.Helper()
	last, ok := snap.LastMessage()
	require.True(t, ok)
	return last
}

func containsPrefix(keys []string, prefix string) bool {
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}
