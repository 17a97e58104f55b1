package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	assert.Equal(t, "gamer@example.com", Email("  Gamer@Example.COM "))
}

func TestUsername(t *testing.T) {
	assert.Equal(t, "pro_player.99", Username(" pro_player.99 "))
	assert.Equal(t, "proplayer", Username("pro player!@#"))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "gg\nwp", Message(" gg\nwp \x00\x1b"))
	assert.Equal(t, "", Message("  \x07 "))
	assert.Equal(t, "tab\tkept", Message("tab\tkept"))
}
