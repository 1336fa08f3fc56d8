package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	user := NewMessage(RoleUser, "capital of Mars?", KindPlain, fixedTime)
	bot := NewMessage(RoleBot, "No idea", KindDisambiguationPrompt, fixedTime)

	idle := Snapshot{
		Transcript:  []Message{},
		Affordances: []Affordance{AffordanceAsk},
	}
	busy := Snapshot{
		Transcript:  []Message{user},
		Request:     RequestState{Busy: true},
		Affordances: []Affordance{},
	}
	pending := OpenInteraction(user.Text, nil)
	choosing := Snapshot{
		Transcript:  []Message{user, bot},
		Pending:     pending,
		Affordances: AffordancesFor(pending, RequestState{}, &bot),
	}

	t.Run("Initial Load (Old is Nil)", func(t *testing.T) {
		d := Diff(nil, &idle)
		require.NotNil(t, d)
		assert.Empty(t, d.Appended)
		require.NotNil(t, d.Pending)
		assert.Equal(t, StageNone, d.Pending.Stage)
		require.NotNil(t, d.Request)
		assert.Equal(t, []Affordance{AffordanceAsk}, d.Affordances)
	})

	t.Run("No Changes", func(t *testing.T) {
		assert.Nil(t, Diff(&idle, &idle))
	})

	t.Run("Request Started", func(t *testing.T) {
		d := Diff(&idle, &busy)
		require.NotNil(t, d)
		assert.Equal(t, []Message{user}, d.Appended)
		assert.Nil(t, d.Pending)
		require.NotNil(t, d.Request)
		assert.True(t, d.Request.Busy)
	})

	t.Run("Disambiguation Opened", func(t *testing.T) {
		d := Diff(&busy, &choosing)
		require.NotNil(t, d)
		assert.Equal(t, []Message{bot}, d.Appended)
		require.NotNil(t, d.Pending)
		assert.Equal(t, StageAwaitingOptionChoice, d.Pending.Stage)
		assert.Contains(t, d.Affordances, AffordanceSearchWeb)

		raw, err := json.Marshal(d)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"stage":"awaiting_option_choice"`)
	})

	t.Run("Nil New", func(t *testing.T) {
		assert.Nil(t, Diff(&idle, nil))
	})
}
