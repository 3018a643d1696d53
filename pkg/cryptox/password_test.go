package cryptox_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tasmanlabs/orgauth/pkg/cryptox"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "cryptox-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))
	os.Exit(m.Run())
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := cryptox.HashPassword("secret1")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$v=19$")

	require.NoError(t, cryptox.VerifyPassword("secret1", hash))
	require.ErrorIs(t, cryptox.VerifyPassword("secret2", hash), cryptox.ErrPasswordMismatch)
}

func TestHashIsSalted(t *testing.T) {
	a, err := cryptox.HashPassword("same-password")
	require.NoError(t, err)
	b, err := cryptox.HashPassword("same-password")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsCorruptHash(t *testing.T) {
	require.Error(t, cryptox.VerifyPassword("x", "not-a-hash"))
	require.Error(t, cryptox.VerifyPassword("x", "$argon2id$v=19$m=1,t=1,p=1$!!!$!!!"))
}

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for range 10 {
		pw, err := cryptox.GeneratePassword()
		require.NoError(t, err)
		require.Len(t, pw, 12)
		require.False(t, seen[pw], "generated password repeated")
		seen[pw] = true
	}
}

func TestFingerprintToken(t *testing.T) {
	a := cryptox.FingerprintToken("token-a")
	require.Equal(t, a, cryptox.FingerprintToken("token-a"))
	require.NotEqual(t, a, cryptox.FingerprintToken("token-b"))
	require.Len(t, a, 43) // sha256, base64url, no padding
}
