package signer

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"go.originals.dev/sdk/encoding/multibase"
	"go.originals.dev/sdk/internal/errors"
)

type p256SignerVerifier struct{}

func newP256() SignerVerifier { return p256SignerVerifier{} }

func (p256SignerVerifier) Algorithm() multibase.Algorithm { return multibase.P256 }

func (s p256SignerVerifier) Sign(_ context.Context, message []byte, privateKeyMultibase string) ([]byte, error) {
	alg, kind, key, err := multibase.Decode(privateKeyMultibase)
	if err != nil {
		return nil, err
	}
	if kind != multibase.PrivateKey {
		return nil, errors.CryptoErr("expected a P-256 private key")
	}
	if err := assertAlgorithm(s.Algorithm(), alg); err != nil {
		return nil, err
	}
	curve := elliptic.P256()
	priv := new(ecdsa.PrivateKey)
	priv.PublicKey.Curve = curve
	priv.D = new(big.Int).SetBytes(key)
	priv.PublicKey.X, priv.PublicKey.Y = curve.ScalarBaseMult(key)

	digest := sha256.Sum256(message)
	r, sVal, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	if err != nil {
		return nil, errors.CryptoErr("failed to produce P-256 signature: %v", err)
	}
	out := make([]byte, 64)
	r.FillBytes(out[:32])
	sVal.FillBytes(out[32:])
	return out, nil
}

func (s p256SignerVerifier) Verify(_ context.Context, message, signature []byte, publicKeyMultibase string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	alg, kind, key, err := multibase.Decode(publicKeyMultibase)
	if err != nil || kind != multibase.PublicKey || alg != s.Algorithm() {
		return false
	}
	if len(signature) != 64 {
		return false
	}
	curve := elliptic.P256()
	x, y := elliptic.UnmarshalCompressed(curve, key)
	if x == nil {
		// fall back to uncompressed encoding
		x, y = elliptic.Unmarshal(curve, key)
		if x == nil {
			return false
		}
	}
	pub := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	digest := sha256.Sum256(message)
	r := new(big.Int).SetBytes(signature[:32])
	sVal := new(big.Int).SetBytes(signature[32:])
	return ecdsa.Verify(pub, digest[:], r, sVal)
}
