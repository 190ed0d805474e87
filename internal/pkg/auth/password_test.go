package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secreto-largo")
	require.NoError(t, err)
	assert.NotEqual(t, "secreto-largo", hash)

	assert.True(t, CheckPassword(hash, "secreto-largo"))
	assert.False(t, CheckPassword(hash, "otra-clave"))
	assert.False(t, CheckPassword("not-a-hash", "secreto-largo"))
}
