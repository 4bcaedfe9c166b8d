package signer

import (
	"context"
	"crypto/sha256"
	"encoding/asn1"
	"math/big"

	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"go.originals.dev/sdk/encoding/multibase"
	"go.originals.dev/sdk/internal/errors"
)

type secp256k1SignerVerifier struct{}

func newSecp256k1() SignerVerifier { return secp256k1SignerVerifier{} }

func (secp256k1SignerVerifier) Algorithm() multibase.Algorithm { return multibase.Secp256k1 }

func (s secp256k1SignerVerifier) Sign(_ context.Context, message []byte, privateKeyMultibase string) ([]byte, error) {
	alg, kind, key, err := multibase.Decode(privateKeyMultibase)
	if err != nil {
		return nil, err
	}
	if kind != multibase.PrivateKey {
		return nil, errors.CryptoErr("expected a secp256k1 private key")
	}
	if err := assertAlgorithm(s.Algorithm(), alg); err != nil {
		return nil, err
	}
	priv := secp.PrivKeyFromBytes(key)
	if priv == nil {
		return nil, errors.CryptoErr("failed to decode secp256k1 private key")
	}
	digest := sha256.Sum256(message)
	sig := ecdsa.Sign(priv, digest[:])
	if sig == nil {
		return nil, errors.CryptoErr("failed to produce secp256k1 signature")
	}
	return derToCompact64(sig.Serialize())
}

func (s secp256k1SignerVerifier) Verify(_ context.Context, message, signature []byte, publicKeyMultibase string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	alg, kind, key, err := multibase.Decode(publicKeyMultibase)
	if err != nil || kind != multibase.PublicKey || alg != s.Algorithm() {
		return false
	}
	pub, err := secp.ParsePubKey(key)
	if err != nil {
		return false
	}
	der, err := compact64ToDER(signature)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(message)
	return sig.Verify(digest[:], pub)
}

// derToCompact64 normalizes a DER-encoded ECDSA signature into a fixed
// 64-byte R||S compact representation, mirroring the spec's requirement to
// normalize whatever shape the underlying curve primitive returns (raw
// bytes, a toCompactRawBytes()-style accessor, or a toRawBytes() one) into
// a single consistent output.
func derToCompact64(der []byte) ([]byte, error) {
	var parsed struct{ R, S *big.Int }
	if _, err := asn1.Unmarshal(der, &parsed); err != nil {
		return nil, errors.CryptoErr("failed to parse DER signature: %v", err)
	}
	out := make([]byte, 64)
	parsed.R.FillBytes(out[:32])
	parsed.S.FillBytes(out[32:])
	return out, nil
}

func compact64ToDER(sig []byte) ([]byte, error) {
	if len(sig) != 64 {
		return nil, errors.CryptoErr("invalid compact signature length: %d", len(sig))
	}
	r := new(big.Int).SetBytes(sig[:32])
	sVal := new(big.Int).SetBytes(sig[32:])
	return asn1.Marshal(struct{ R, S *big.Int }{r, sVal})
}
