package keystore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.originals.dev/sdk/crypto/signer"
	"go.originals.dev/sdk/encoding/multibase"
	"go.originals.dev/sdk/keystore"
)

func TestGenerateAndSign(t *testing.T) {
	store := keystore.New()
	kp, err := store.Generate(multibase.Ed25519, "did:peer:abc#key-0")
	require.NoError(t, err)
	require.True(t, store.Has("did:peer:abc#key-0"))

	suite := signer.NewSuite()
	sig, err := store.Sign(context.Background(), "did:peer:abc#key-0", []byte("payload"), suite)
	require.NoError(t, err)
	assert.True(t, suite.Verify(context.Background(), []byte("payload"), sig, kp.PublicKeyMultibase))
}

func TestForgetRemovesSecret(t *testing.T) {
	store := keystore.New()
	_, err := store.Generate(multibase.Secp256k1, "ref-1")
	require.NoError(t, err)
	store.Forget("ref-1")
	assert.False(t, store.Has("ref-1"))
}

func TestSignUnknownRefFails(t *testing.T) {
	store := keystore.New()
	_, err := store.Sign(context.Background(), "missing", []byte("m"), signer.NewSuite())
	require.Error(t, err)
}
