package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken(42, "test-secret", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ParseToken(token, "test-secret")
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestExpiredToken(t *testing.T) {
	token, err := NewToken(42, "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "test-secret")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecret(t *testing.T) {
	token, err := NewToken(42, "test-secret", time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMalformedToken(t *testing.T) {
	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := ParseToken(token, "test-secret")
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}
