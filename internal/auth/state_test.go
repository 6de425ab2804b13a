package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTokens_RoundTrip(t *testing.T) {
	tokens := NewStateTokens("test-secret", 10*time.Minute)

	state, err := tokens.Generate(123456789)
	require.NoError(t, err)
	require.NotEmpty(t, state)

	chatID, err := tokens.Validate(state)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), chatID)
}

func TestStateTokens_Expired(t *testing.T) {
	tokens := NewStateTokens("test-secret", -time.Minute)

	state, err := tokens.Generate(42)
	require.NoError(t, err)

	_, err = tokens.Validate(state)
	require.Error(t, err)
}

func TestStateTokens_WrongSecret(t *testing.T) {
	state, err := NewStateTokens("secret-a", 10*time.Minute).Generate(42)
	require.NoError(t, err)

	_, err = NewStateTokens("secret-b", 10*time.Minute).Validate(state)
	require.Error(t, err)
}

func TestStateTokens_Garbage(t *testing.T) {
	_, err := NewStateTokens("secret", 10*time.Minute).Validate("not-a-token")
	require.Error(t, err)
}
