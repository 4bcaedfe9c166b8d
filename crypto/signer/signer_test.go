package signer_test

import (
	"context"
	"crypto/ed25519"
	"testing"

	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.originals.dev/sdk/crypto/signer"
	"go.originals.dev/sdk/encoding/multibase"
)

func TestEd25519SignVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	privMB, err := multibase.Encode(multibase.Ed25519, multibase.PrivateKey, priv)
	require.NoError(t, err)
	pubMB, err := multibase.Encode(multibase.Ed25519, multibase.PublicKey, pub)
	require.NoError(t, err)

	s := signer.NewSuite()
	ctx := context.Background()
	msg := []byte("hello world")

	sig, err := s.Sign(ctx, msg, privMB)
	require.NoError(t, err)
	assert.True(t, s.Verify(ctx, msg, sig, pubMB))

	flipped := append([]byte(nil), sig...)
	flipped[0] ^= 0xff
	assert.False(t, s.Verify(ctx, msg, flipped, pubMB))
}

// TestScenario_Ed25519SignVerify is the literal end-to-end scenario: sign
// "hello world" with a fresh Ed25519 key, verify true against the public
// key, then verify false once byte 0 of the signature is flipped.
func TestScenario_Ed25519SignVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	privMB, err := multibase.Encode(multibase.Ed25519, multibase.PrivateKey, priv)
	require.NoError(t, err)
	pubMB, err := multibase.Encode(multibase.Ed25519, multibase.PublicKey, pub)
	require.NoError(t, err)

	s := signer.NewSuite()
	ctx := context.Background()
	msg := []byte("hello world")

	sig, err := s.Sign(ctx, msg, privMB)
	require.NoError(t, err)
	assert.True(t, s.Verify(ctx, msg, sig, pubMB))

	flipped := append([]byte(nil), sig...)
	flipped[0] ^= 0xff
	assert.False(t, s.Verify(ctx, msg, flipped, pubMB))
}

func TestSecp256k1SignVerify(t *testing.T) {
	priv, err := secp.GeneratePrivateKey()
	require.NoError(t, err)
	pub := priv.PubKey()

	privMB, err := multibase.Encode(multibase.Secp256k1, multibase.PrivateKey, priv.Serialize())
	require.NoError(t, err)
	pubMB, err := multibase.Encode(multibase.Secp256k1, multibase.PublicKey, pub.SerializeCompressed())
	require.NoError(t, err)

	s := signer.NewSuite()
	ctx := context.Background()
	msg := []byte("secp256k1 message")

	sig, err := s.Sign(ctx, msg, privMB)
	require.NoError(t, err)
	require.Len(t, sig, 64)
	assert.True(t, s.Verify(ctx, msg, sig, pubMB))
}

func TestWrongKeyTypeFails(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	privMB, err := multibase.Encode(multibase.Ed25519, multibase.PrivateKey, priv)
	require.NoError(t, err)
	_ = pub

	secpPriv, err := secp.GeneratePrivateKey()
	require.NoError(t, err)
	secpMB, err := multibase.Encode(multibase.Secp256k1, multibase.PrivateKey, secpPriv.Serialize())
	require.NoError(t, err)

	s := signer.NewSuite()
	ctx := context.Background()

	// Ed25519 key used where a secp256k1 signer expects one: the suite
	// dispatches by the key's own tag, so signing via the generic Suite
	// always succeeds; wrong-key-type only surfaces when a concrete
	// per-algorithm implementation is invoked directly with a mismatched key.
	_, err = s.Sign(ctx, []byte("m"), privMB)
	require.NoError(t, err)
	_, err = s.Sign(ctx, []byte("m"), secpMB)
	require.NoError(t, err)

	// Invoked directly, the secp256k1 implementation rejects the Ed25519 key.
	secpImpl, ok := s.For(multibase.Secp256k1)
	require.True(t, ok)
	_, err = secpImpl.Sign(ctx, []byte("m"), privMB)
	assert.Error(t, err)
}

func TestVerifyNeverPanics(t *testing.T) {
	s := signer.NewSuite()
	ctx := context.Background()
	assert.False(t, s.Verify(ctx, []byte("m"), []byte("bad-sig"), "not-a-valid-multibase-key"))
}
