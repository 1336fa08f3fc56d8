package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopy_Merge(t *testing.T) {
	base := DefaultCopy()
	merged := base.Merge(Copy{Disambiguation: "Hmm?", JokeMarkers: []string{"more?"}})

	assert.Equal(t, "Hmm?", merged.Disambiguation)
	assert.Equal(t, base.TransportFallback, merged.TransportFallback)
	assert.Equal(t, []string{"more?"}, merged.JokeMarkers)
	assert.Equal(t, []string{"another joke?"}, base.JokeMarkers, "merge must not touch the receiver")
}

func TestCopy_FormatWebPreview(t *testing.T) {
	c := DefaultCopy()
	assert.Equal(t, "Found on the web: Mars has no capital. Do you want to save this answer?",
		c.FormatWebPreview("Mars has no capital"))

	c.WebPreview = "Preview:"
	assert.Equal(t, "Preview: text", c.FormatWebPreview("text"))
}

func TestCopy_IsJokeContinuation(t *testing.T) {
	c := DefaultCopy()
	assert.True(t, c.IsJokeContinuation("Why did the chicken... Another joke?"))
	assert.False(t, c.IsJokeContinuation("4"))

	es := CopyForLocale("es")
	assert.True(t, es.IsJokeContinuation("Había una vez... ¿Quieres otro chiste?"))
	assert.Equal(t, "Escribe un mensaje", es.EmptyQuestion)
	assert.Equal(t, DefaultCopy(), CopyForLocale("fr"))
}
