package auth

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("panel-password")
	require.NoError(t, err)

	assert.Contains(t, hash, "$argon2id$")
	assert.Contains(t, hash, "v=19")
	assert.Contains(t, hash, "m=65536,t=3,p=4")
}

func TestHashPassword_UniquePerCall(t *testing.T) {
	t.Parallel()

	hash1, err := HashPassword("same")
	require.NoError(t, err)
	hash2, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	ok, err := VerifyPassword("correct-horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash string
		want string
	}{
		{"too few parts", "$argon2id$v=19", "expected 6 parts"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA", "expected argon2id"},
		{"wrong version", "$argon2id$v=16$m=65536,t=3,p=4$c2FsdA$aGFzaA", "unsupported argon2 version"},
		{"bad params", "$argon2id$v=19$garbage$c2FsdA$aGFzaA", "invalid params format"},
		{"bad salt", "$argon2id$v=19$m=65536,t=3,p=4$!!!$aGFzaA", "invalid salt encoding"},
		{"bad key", "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$!!!", "invalid hash encoding"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := VerifyPassword("x", tt.hash)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func scriptedReader(answers ...string) PasswordReader {
	i := 0
	return func() ([]byte, error) {
		if i >= len(answers) {
			return nil, errors.New("no more input")
		}
		a := answers[i]
		i++
		return []byte(a), nil
	}
}

func TestPromptAndConfirmPassword(t *testing.T) {
	t.Parallel()

	t.Run("matching entries", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		pw, err := PromptAndConfirmPassword(&out, scriptedReader("s3cret", "s3cret"))
		require.NoError(t, err)
		assert.Equal(t, "s3cret", pw)
		assert.Contains(t, out.String(), "Panel password: ")
		assert.Contains(t, out.String(), "Confirm password: ")
	})

	t.Run("empty password", func(t *testing.T) {
		t.Parallel()
		_, err := PromptAndConfirmPassword(&bytes.Buffer{}, scriptedReader(""))
		assert.ErrorIs(t, err, ErrEmptyPassword)
	})

	t.Run("mismatch", func(t *testing.T) {
		t.Parallel()
		_, err := PromptAndConfirmPassword(&bytes.Buffer{}, scriptedReader("a", "b"))
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("read failure", func(t *testing.T) {
		t.Parallel()
		_, err := PromptAndConfirmPassword(&bytes.Buffer{}, scriptedReader())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read password")
	})
}
