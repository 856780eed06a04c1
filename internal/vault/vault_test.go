package vault_test

import (
	"strings"
	"testing"

	"github.com/ras0q/rotmgstash/internal/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVault(t *testing.T, key string) *vault.Vault {
	t.Helper()

	v, err := vault.New(&key, nil)
	require.NoError(t, err)

	return v
}

func TestEncryptDecrypt(t *testing.T) {
	v := newVault(t, strings.Repeat("ab", 32))

	for _, plaintext := range []string{"", "Hello B)", strings.Repeat("x", 16), "パスワード"} {
		ciphertext, err := v.Encrypt(plaintext)
		require.NoError(t, err)

		iv, body, ok := strings.Cut(ciphertext, ":")
		require.True(t, ok)
		assert.Len(t, iv, 32)
		assert.Zero(t, len(body)%32)

		got, err := v.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestEncryptUsesFreshIV(t *testing.T) {
	v := newVault(t, "key")

	a, err := v.Encrypt("same")
	require.NoError(t, err)
	b, err := v.Encrypt("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestNilKeyMatchesEmptyKey(t *testing.T) {
	withNil, err := vault.New(nil, nil)
	require.NoError(t, err)

	ciphertext, err := withNil.Encrypt("pw")
	require.NoError(t, err)

	got, err := newVault(t, "").Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "pw", got)
}

func TestDecryptRejectsMalformedInput(t *testing.T) {
	v := newVault(t, "key")
	valid, err := v.Encrypt("pw")
	require.NoError(t, err)
	iv, body, _ := strings.Cut(valid, ":")

	tests := map[string]string{
		"no separator":     iv + body,
		"extra separator":  valid + ":00",
		"bad iv hex":       "zz" + iv[2:] + ":" + body,
		"short iv":         iv[:30] + ":" + body,
		"bad body hex":     iv + ":zz",
		"partial block":    iv + ":" + body[:30],
		"empty ciphertext": iv + ":",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Decrypt(input)
			require.ErrorIs(t, err, vault.ErrInvalidCiphertext)
		})
	}
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	ciphertext, err := newVault(t, "right").Encrypt("a reasonably long password")
	require.NoError(t, err)

	got, err := newVault(t, "wrong").Decrypt(ciphertext)
	if err == nil {
		assert.NotEqual(t, "a reasonably long password", got)
	}
}
