package main

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/internal/config"
	"github.com/aretw0/parley/internal/logging"
)

func TestLoadConfig_FlagsOverride(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().AddFlagSet(rootCmd.PersistentFlags())
	require.NoError(t, cmd.Flags().Parse([]string{"--base-url", "http://qa.example/api", "--log-level", "debug"}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://qa.example/api", cfg.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)

	require.NoError(t, cmd.Flags().Set("log-level", "chatty"))
	_, err = loadConfig(cmd)
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "parley version ")
}

func TestServeHTTP_StopsWithContext(t *testing.T) {
	ln, err := listen(0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
		ReadHeaderTimeout: time.Second,
	}
	done := make(chan error, 1)
	go func() { done <- serveHTTP(ctx, logging.NewNop(), srv, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewKnowledgeBase_FromStubConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Stub.Answers = map[string]string{"Hello": "Hi"}
	cfg.Stub.Web = map[string]string{"Capital of Mars?": "None"}

	kb := newKnowledgeBase(cfg)
	answer, ok := kb.Lookup("hello")
	assert.True(t, ok)
	assert.Equal(t, "Hi", answer)
}
