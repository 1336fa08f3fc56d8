package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewMessage(t *testing.T) {
	m := NewMessage(RoleUser, "hi", "", fixedTime)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, KindPlain, m.Kind)
	assert.Equal(t, fixedTime, m.Timestamp)

	other := NewMessage(RoleUser, "hi", "", fixedTime)
	assert.NotEqual(t, m.ID, other.ID)
}

func TestTranscript_AppendUnlessRepeated(t *testing.T) {
	var tr Transcript

	assert.True(t, tr.AppendUnlessRepeated(NewMessage(RoleUser, "2+2", KindPlain, fixedTime)))
	assert.False(t, tr.AppendUnlessRepeated(NewMessage(RoleUser, "2+2", KindPlain, fixedTime)))
	assert.Equal(t, 1, tr.Len())

	tr.Append(NewMessage(RoleBot, "4", KindPlain, fixedTime))
	assert.True(t, tr.AppendUnlessRepeated(NewMessage(RoleUser, "2+2", KindPlain, fixedTime)),
		"an intervening bot message allows the same question again")
	assert.Equal(t, 3, tr.Len())
}

func TestTranscript_CopiesAreIsolated(t *testing.T) {
	var tr Transcript
	tr.Append(NewMessage(RoleUser, "a", KindPlain, fixedTime))
	tr.Append(NewMessage(RoleBot, "b", KindPlain, fixedTime))

	msgs := tr.Messages()
	msgs[0].Text = "mutated"

	first := tr.Messages()[0]
	assert.Equal(t, "a", first.Text)

	assert.Len(t, tr.Since(1), 1)
	assert.Empty(t, tr.Since(5))
	assert.Len(t, tr.Since(-3), 2)

	last, ok := tr.Last()
	assert.True(t, ok)
	assert.Equal(t, "b", last.Text)
}
