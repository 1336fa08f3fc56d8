package testutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/adapters/memory"
)

// Noon is the clock used by NewDialog.
var Noon = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Mars is the web searcher most tests share: one question with a known preview.
func Mars() memory.StaticSearcher {
	return memory.NewStaticSearcher(map[string]string{"Capital of Mars?": "Mars has no capital"})
}

// NewDialog creates a Dialog over an in-memory knowledge base with a fixed clock.
// It fails the test immediately on error.
func NewDialog(t *testing.T, kbOpts ...memory.Option) (*parley.Dialog, *memory.KnowledgeBase) {
	t.Helper()

	kb := memory.NewKnowledgeBase(kbOpts...)
	d, err := parley.New("",
		parley.WithAnswerService(kb),
		parley.WithClock(func() time.Time { return Noon }),
	)
	require.NoError(t, err, "Failed to create dialog")

	return d, kb
}
