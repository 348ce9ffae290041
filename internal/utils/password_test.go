package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret", hash)

	ok, err := VerifyPassword(hash, "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordEmpty(t *testing.T) {
	_, err := HashPassword("", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmptyField)
}

func TestVerifyPasswordEmptyFields(t *testing.T) {
	_, err := VerifyPassword("", "s3cret")
	assert.ErrorIs(t, err, ErrEmptyField)
	_, err = VerifyPassword("some-hash", "")
	assert.ErrorIs(t, err, ErrEmptyField)
}

func TestHashesAreSalted(t *testing.T) {
	a, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
