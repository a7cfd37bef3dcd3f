package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateShareToken(t *testing.T) {
	first, err := GenerateShareToken()
	require.NoError(t, err)
	second, err := GenerateShareToken()
	require.NoError(t, err)

	assert.Len(t, first, ShareTokenLength)
	assert.True(t, IsShareTokenFormat(first))
	assert.NotEqual(t, first, second)
}

func TestGenerateHex_RejectsNonPositive(t *testing.T) {
	_, err := GenerateHex(0)
	assert.Error(t, err)
}

func TestIsShareTokenFormat(t *testing.T) {
	assert.False(t, IsShareTokenFormat(""))
	assert.False(t, IsShareTokenFormat("abc"))
	assert.False(t, IsShareTokenFormat("ZZ"+"0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcd"))
	assert.True(t, IsShareTokenFormat("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"))
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "abc", Prefix("abc"))
	assert.Equal(t, "01234567...", Prefix("0123456789abcdef"))
}
