package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQuestion(t *testing.T) {
	assert.Equal(t, "what is go?", domain.NormalizeQuestion("  What   is\tGo? "))
	assert.Equal(t, "", domain.NormalizeQuestion(" \n "))
}

func TestHandleRequest_WireShape(t *testing.T) {
	t.Run("Search web omits optional fields", func(t *testing.T) {
		raw, err := json.Marshal(domain.SearchWeb("q"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"question":"q","option":"searchWeb"}`, string(raw))
	})

	t.Run("Provide answer carries userAnswer", func(t *testing.T) {
		raw, err := json.Marshal(domain.ProvideAnswer("q", "a"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"question":"q","option":"provideAnswer","userAnswer":"a"}`, string(raw))
	})

	t.Run("Declined preview still sends confirmWeb", func(t *testing.T) {
		raw, err := json.Marshal(domain.ConfirmWeb("q", false))
		require.NoError(t, err)
		assert.JSONEq(t, `{"question":"q","option":"searchWeb","confirmWeb":false}`, string(raw))
	})
}
