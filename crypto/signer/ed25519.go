package signer

import (
	"context"
	"crypto/ed25519"

	"go.originals.dev/sdk/encoding/multibase"
	"go.originals.dev/sdk/internal/errors"
)

type ed25519SignerVerifier struct{}

func newEd25519() SignerVerifier { return ed25519SignerVerifier{} }

func (ed25519SignerVerifier) Algorithm() multibase.Algorithm { return multibase.Ed25519 }

func (s ed25519SignerVerifier) Sign(_ context.Context, message []byte, privateKeyMultibase string) ([]byte, error) {
	alg, kind, key, err := multibase.Decode(privateKeyMultibase)
	if err != nil {
		return nil, err
	}
	if kind != multibase.PrivateKey {
		return nil, errors.CryptoErr("expected an Ed25519 private key")
	}
	if err := assertAlgorithm(s.Algorithm(), alg); err != nil {
		return nil, err
	}
	if len(key) != ed25519.SeedSize && len(key) != ed25519.PrivateKeySize {
		return nil, errors.CryptoErr("invalid Ed25519 private key length: %d", len(key))
	}
	priv := ed25519.PrivateKey(key)
	if len(key) == ed25519.SeedSize {
		priv = ed25519.NewKeyFromSeed(key)
	}
	return ed25519.Sign(priv, message), nil
}

func (s ed25519SignerVerifier) Verify(_ context.Context, message, signature []byte, publicKeyMultibase string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	alg, kind, key, err := multibase.Decode(publicKeyMultibase)
	if err != nil || kind != multibase.PublicKey || alg != s.Algorithm() {
		return false
	}
	if len(key) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(key), message, signature)
}
