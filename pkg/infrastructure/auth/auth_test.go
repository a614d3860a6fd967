package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordManager(t *testing.T) {
	manager := NewPasswordManager()

	hash, err := manager.Hash("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)

	assert.True(t, manager.Verify("correct-horse", hash))
	assert.False(t, manager.Verify("wrong", hash))
	assert.False(t, manager.Verify("correct-horse", "not-a-hash"))
}

func TestPasswordManager_TooLong(t *testing.T) {
	manager := NewPasswordManager()

	_, err := manager.Hash(strings.Repeat("x", maxPasswordLen+1))
	assert.Error(t, err)
	assert.False(t, manager.Verify(strings.Repeat("x", maxPasswordLen+1), "whatever"))
}

func TestTokenManager_RoundTrip(t *testing.T) {
	manager := NewTokenManager("secret", time.Minute)

	token, err := manager.Issue("user-42")
	require.NoError(t, err)

	subject, err := manager.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", subject)
}

func TestTokenManager_Rejections(t *testing.T) {
	manager := NewTokenManager("secret", time.Minute)

	t.Run("Garbage", func(t *testing.T) {
		_, err := manager.Decode("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenManager("other-secret", time.Minute)
		token, err := other.Issue("user-42")
		require.NoError(t, err)

		_, err = manager.Decode(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		expired := NewTokenManager("secret", -time.Minute)
		token, err := expired.Issue("user-42")
		require.NoError(t, err)

		_, err = manager.Decode(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
