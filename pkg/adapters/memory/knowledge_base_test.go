package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnowledgeBase_Ask(t *testing.T) {
	kb := memory.NewKnowledgeBase(memory.WithAnswers(map[string]string{"What is Go?": "A programming language."}))
	ctx := context.Background()

	t.Run("Known question is normalized", func(t *testing.T) {
		res, err := kb.Ask(ctx, "  what IS   go? ")
		require.NoError(t, err)
		assert.True(t, res.Found)
		assert.Equal(t, "A programming language.", res.Answer)
	})

	t.Run("Unknown question offers both options", func(t *testing.T) {
		res, err := kb.Ask(ctx, "capital of Mars?")
		require.NoError(t, err)
		assert.False(t, res.Found)
		assert.Equal(t, []string{"provideAnswer", "searchWeb"}, res.Options)
	})

	t.Run("Jokes rotate and carry the marker", func(t *testing.T) {
		kb := memory.NewKnowledgeBase(memory.WithJokes("Another joke?", "one", "two"))
		first, err := kb.Ask(ctx, "tell me a joke")
		require.NoError(t, err)
		second, err := kb.Ask(ctx, "tell me another joke")
		require.NoError(t, err)

		assert.Equal(t, "one Another joke?", first.Answer)
		assert.Equal(t, "two Another joke?", second.Answer)
		assert.True(t, domain.DefaultCopy().IsJokeContinuation(first.Answer))
	})
}

func TestKnowledgeBase_ProvideAnswer(t *testing.T) {
	kb := memory.NewKnowledgeBase()
	ctx := context.Background()

	res, err := kb.HandleResponse(ctx, domain.ProvideAnswer("Capital of Mars?", "  Olympus City "))
	require.NoError(t, err)
	assert.True(t, res.Success)

	ask, err := kb.Ask(ctx, "capital of mars?")
	require.NoError(t, err)
	assert.True(t, ask.Found)
	assert.Equal(t, "Olympus City", ask.Answer)

	res, err = kb.HandleResponse(ctx, domain.HandleRequest{Question: "q", Option: domain.OptionProvideAnswer})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)
}

func TestKnowledgeBase_SearchWeb(t *testing.T) {
	searcher := memory.NewStaticSearcher(map[string]string{"Capital  of MARS?": "Mars has no capital."})
	kb := memory.NewKnowledgeBase(memory.WithWebSearcher(searcher))
	ctx := context.Background()

	t.Run("Nothing found", func(t *testing.T) {
		res, err := kb.HandleResponse(ctx, domain.SearchWeb("unknown"))
		require.NoError(t, err)
		assert.Empty(t, res.Preview)
	})

	t.Run("Confirm without preview", func(t *testing.T) {
		res, err := kb.HandleResponse(ctx, domain.ConfirmWeb("unknown", true))
		require.NoError(t, err)
		assert.False(t, res.Success)
	})

	t.Run("Declined preview is dropped", func(t *testing.T) {
		res, err := kb.HandleResponse(ctx, domain.SearchWeb("Capital of Mars?"))
		require.NoError(t, err)
		assert.Equal(t, "Mars has no capital.", res.Preview)

		_, err = kb.HandleResponse(ctx, domain.ConfirmWeb("Capital of Mars?", false))
		require.NoError(t, err)
		_, ok := kb.Lookup("capital of mars?")
		assert.False(t, ok)

		res, err = kb.HandleResponse(ctx, domain.ConfirmWeb("Capital of Mars?", true))
		require.NoError(t, err)
		assert.False(t, res.Success, "the preview was consumed by the decline")
	})

	t.Run("Accepted preview is learned", func(t *testing.T) {
		_, err := kb.HandleResponse(ctx, domain.SearchWeb("Capital of Mars?"))
		require.NoError(t, err)

		res, err := kb.HandleResponse(ctx, domain.ConfirmWeb("Capital of Mars?", true))
		require.NoError(t, err)
		assert.True(t, res.Success)

		answer, ok := kb.Lookup("capital of mars?")
		assert.True(t, ok)
		assert.Equal(t, "Mars has no capital.", answer)
	})

	t.Run("Searcher failure", func(t *testing.T) {
		boom := errors.New("rate limited")
		kb := memory.NewKnowledgeBase(memory.WithWebSearcher(memory.WebSearchFunc(
			func(context.Context, string) (string, error) { return "", boom },
		)))
		_, err := kb.HandleResponse(ctx, domain.SearchWeb("q"))
		assert.ErrorIs(t, err, boom)
	})
}

func TestKnowledgeBase_Errors(t *testing.T) {
	kb := memory.NewKnowledgeBase()
	ctx := context.Background()

	_, err := kb.HandleResponse(ctx, domain.HandleRequest{Question: "q", Option: "teleport"})
	assert.ErrorIs(t, err, memory.ErrUnknownOption)

	_, err = kb.HandleResponse(ctx, domain.SearchWeb("  "))
	assert.ErrorIs(t, err, memory.ErrEmptyQuestion)
}
