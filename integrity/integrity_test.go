package integrity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.originals.dev/sdk/crypto/signer"
	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/encoding/multibase"
	"go.originals.dev/sdk/integrity"
	"go.originals.dev/sdk/keystore"
)

func TestCreateAndVerifyProofRoundTrip(t *testing.T) {
	pub, priv, err := generateEd25519(t)
	require.NoError(t, err)

	vm := &did.VerificationMethod{
		ID:                 "did:peer:0zKey#key-1",
		Type:               "Multikey",
		PublicKeyMultibase: pub,
	}
	resolve := func(_ context.Context, vmID string) (*did.VerificationMethod, error) {
		if vmID == vm.ID {
			return vm, nil
		}
		return nil, nil
	}
	engine := integrity.NewEngine(nil, resolve)
	suite := signer.NewSuite()

	doc := map[string]interface{}{"hello": "world", "id": "did:peer:0zKey"}
	proof, err := engine.CreateProof(context.Background(), doc, suite, priv, integrity.Options{
		VerificationMethod: vm.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, integrity.Cryptosuite, proof.Cryptosuite)

	result := engine.VerifyProof(context.Background(), doc, proof, suite)
	assert.True(t, result.Verified)
	assert.Empty(t, result.Errors)
}

func TestVerifyProofFailsOnTamperedDocument(t *testing.T) {
	pub, priv, err := generateEd25519(t)
	require.NoError(t, err)

	vm := &did.VerificationMethod{ID: "did:peer:0zKey#key-1", PublicKeyMultibase: pub}
	resolve := func(_ context.Context, _ string) (*did.VerificationMethod, error) { return vm, nil }
	engine := integrity.NewEngine(nil, resolve)
	suite := signer.NewSuite()

	doc := map[string]interface{}{"hello": "world"}
	proof, err := engine.CreateProof(context.Background(), doc, suite, priv, integrity.Options{VerificationMethod: vm.ID})
	require.NoError(t, err)

	tampered := map[string]interface{}{"hello": "tampered"}
	result := engine.VerifyProof(context.Background(), tampered, proof, suite)
	assert.False(t, result.Verified)
	assert.NotEmpty(t, result.Errors)
}

func TestVerifyProofFailsOnUnresolvableVerificationMethod(t *testing.T) {
	resolve := func(_ context.Context, _ string) (*did.VerificationMethod, error) { return nil, nil }
	engine := integrity.NewEngine(nil, resolve)
	suite := signer.NewSuite()

	result := engine.VerifyProof(context.Background(), map[string]interface{}{}, &integrity.Proof{
		Cryptosuite:        integrity.Cryptosuite,
		VerificationMethod: "did:peer:0zMissing#key-1",
		ProofValue:         "zAbc",
	}, suite)
	assert.False(t, result.Verified)
}

func TestJCSCanonicalizerSortsKeys(t *testing.T) {
	c := integrity.JCSCanonicalizer{}
	a, err := c.Canonicalize(context.Background(), map[string]interface{}{"b": 1, "a": 2})
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1}`, string(a))
}

func generateEd25519(t *testing.T) (pubMB, privMB string, err error) {
	t.Helper()
	store := keystore.New()
	kp, err := store.Generate(multibase.Ed25519, "scratch")
	if err != nil {
		return "", "", err
	}
	return kp.PublicKeyMultibase, kp.PrivateKeyMultibase, nil
}
