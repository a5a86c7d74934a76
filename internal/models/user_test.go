package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUser_BeforeCreateHashesPlainPassword(t *testing.T) {
	u := &User{Email: "a@x.com", Password: "secret"}

	require.NoError(t, u.BeforeCreate(nil))

	assert.NotEqual(t, "secret", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("other")))
	assert.False(t, u.DateJoined.IsZero())
}

func TestUser_BeforeCreateKeepsEncodedHash(t *testing.T) {
	encoded := "pbkdf2_sha256$600000$salt$digest"
	u := &User{Email: "a@x.com", Password: encoded}

	require.NoError(t, u.BeforeCreate(nil))

	assert.Equal(t, encoded, u.Password)
}

func TestUser_BeforeCreateLeavesEmptyPasswordUnusable(t *testing.T) {
	u := &User{Email: "a@x.com"}

	require.NoError(t, u.BeforeCreate(nil))

	assert.Empty(t, u.Password)
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("")))
}

func TestConfirmEmailToken_GeneratesKey(t *testing.T) {
	token := &ConfirmEmailToken{UserID: 1}

	require.NoError(t, token.BeforeCreate(nil))

	assert.Len(t, token.Key, 64)
}
