package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunAnswerCacheContract runs a suite of tests to verify that an AnswerCache implementation
// adheres to the defined interface contract.
func RunAnswerCacheContract(t *testing.T, cache AnswerCache) {
	ctx := context.Background()
	question := "contract-question-" + time.Now().Format("20060102150405")

	t.Run("Miss", func(t *testing.T) {
		_, ok, err := cache.Get(ctx, "never-stored-"+question)
		require.NoError(t, err, "Get on a miss should not return error")
		assert.False(t, ok)
	})

	t.Run("Put and Get", func(t *testing.T) {
		result := domain.AskResult{Found: true, Answer: "42"}
		require.NoError(t, cache.Put(ctx, question, result))

		got, ok, err := cache.Get(ctx, question)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, result, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, question, domain.AskResult{Found: true, Answer: "43"}))
		got, ok, err := cache.Get(ctx, question)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "43", got.Answer)
	})

	t.Run("Invalidate", func(t *testing.T) {
		require.NoError(t, cache.Invalidate(ctx, question))
		_, ok, err := cache.Get(ctx, question)
		require.NoError(t, err)
		assert.False(t, ok, "Get after Invalidate should miss")

		assert.NoError(t, cache.Invalidate(ctx, question), "Invalidate of a missing entry is not an error")
	})
}
