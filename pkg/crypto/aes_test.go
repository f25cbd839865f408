package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealOpen(t *testing.T) {
	s, err := NewSealer(testKey)
	require.NoError(t, err)

	sealed, err := s.Seal("r1")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, sealed, "r1")

	again, err := s.Seal("r1")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "r1", plain)
}

func TestOpenPassesThroughPlainValues(t *testing.T) {
	s, err := NewSealer(testKey)
	require.NoError(t, err)

	plain, err := s.Open("legacy-token")
	require.NoError(t, err)
	assert.Equal(t, "legacy-token", plain)

	empty, err := s.Seal("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOpenWithWrongKeyFails(t *testing.T) {
	s1, err := NewSealer(testKey)
	require.NoError(t, err)
	s2, err := NewSealer(strings.Repeat("ff", 32))
	require.NoError(t, err)

	sealed, err := s1.Seal("t1")
	require.NoError(t, err)

	_, err = s2.Open(sealed)
	assert.Error(t, err)
}

func TestNewSealerRejectsBadKeys(t *testing.T) {
	_, err := NewSealer("zz")
	assert.Error(t, err)

	_, err = NewSealer("abcd")
	assert.Error(t, err)
}
