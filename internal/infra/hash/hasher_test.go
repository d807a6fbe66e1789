package hash

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/GehirnInc/crypt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScheme(t *testing.T) {
	tests := []struct {
		raw  string
		want Scheme
	}{
		{raw: "pbkdf2", want: Scheme{Kind: SchemePBKDF2}},
		{raw: "crypt", want: Scheme{Kind: SchemeCrypt}},
		{raw: "OpenSSL:sha256", want: Scheme{Kind: SchemeDigest, Digest: "sha256"}},
		{raw: "OpenSSL:SHA512", want: Scheme{Kind: SchemeDigest, Digest: "sha512"}},
		{raw: "md5", want: Scheme{Kind: SchemeFunction, Function: "md5"}},
		{raw: "sha2", want: Scheme{Kind: SchemeFunction, Function: "sha2"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseScheme(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScheme_Rejected(t *testing.T) {
	for _, raw := range []string{"", "OpenSSL:", "OpenSSL:sha256; drop", "md5()", "a b"} {
		_, err := ParseScheme(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestHash_PBKDF2(t *testing.T) {
	hasher := NewWithScheme(Scheme{Kind: SchemePBKDF2})

	cred, err := hasher.Hash("longpassword", "al-ice")
	require.NoError(t, err)
	require.False(t, cred.IsExpression())

	// Stored form is 40 hex characters (20 derived bytes).
	assert.Len(t, cred.Value(), 40)
	_, err = hex.DecodeString(cred.Value())
	assert.NoError(t, err)

	// Deterministic for the same login; the login is the salt, so a
	// different login yields a different credential.
	again, err := hasher.Hash("longpassword", "al-ice")
	require.NoError(t, err)
	assert.Equal(t, cred.Value(), again.Value())

	other, err := hasher.Hash("longpassword", "bob")
	require.NoError(t, err)
	assert.NotEqual(t, cred.Value(), other.Value())
}

func TestHash_Crypt(t *testing.T) {
	hasher := NewWithScheme(Scheme{Kind: SchemeCrypt})

	cred, err := hasher.Hash("longpassword", "al-ice")
	require.NoError(t, err)
	require.False(t, cred.IsExpression())
	assert.True(t, strings.HasPrefix(cred.Value(), "$1$"))

	crypter := crypt.MD5.New()
	assert.NoError(t, crypter.Verify(cred.Value(), []byte("longpassword")))
	assert.Error(t, crypter.Verify(cred.Value(), []byte("wrongpassword")))
}

func TestHash_DigestExpression(t *testing.T) {
	hasher := NewWithScheme(Scheme{Kind: SchemeDigest, Digest: "sha256"})

	cred, err := hasher.Hash("longpassword", "al-ice")
	require.NoError(t, err)
	require.True(t, cred.IsExpression())

	expr, args := cred.Expression()
	assert.Equal(t, "'{sha256}' || encode(digest(?, ?), 'base64')", expr)
	assert.Equal(t, []any{"longpassword", "sha256"}, args)
}

func TestHash_FunctionExpression(t *testing.T) {
	hasher := NewWithScheme(Scheme{Kind: SchemeFunction, Function: "md5"})

	cred, err := hasher.Hash("longpassword", "al-ice")
	require.NoError(t, err)
	require.True(t, cred.IsExpression())

	expr, args := cred.Expression()
	assert.Equal(t, "md5(?)", expr)
	assert.Equal(t, []any{"longpassword"}, args)
}
