package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("hunter2x")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2x", hash)

	assert.True(t, Compare(hash, "hunter2x"))
	assert.False(t, Compare(hash, "wrong-password"))
	assert.False(t, Compare("not-a-bcrypt-hash", "hunter2x"))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("hunter2x")
	require.NoError(t, err)
	second, err := Hash("hunter2x")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("hunter2x"))
	assert.Error(t, Validate("short"))
	assert.Error(t, Validate(strings.Repeat("a", 73)))
}
