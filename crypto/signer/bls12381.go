package signer

import (
	"context"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"go.originals.dev/sdk/encoding/multibase"
	"go.originals.dev/sdk/internal/errors"
)

// blsDST is the hash-to-curve domain separation tag used when mapping
// messages onto G2, scoped to this SDK to avoid cross-protocol signature
// reuse.
var blsDST = []byte("ORIGINALS-SDK-BLS12381G2_XMD:SHA-256_SSWU_RO_")

type blsSignerVerifier struct{}

func newBLS12381G2() SignerVerifier { return blsSignerVerifier{} }

func (blsSignerVerifier) Algorithm() multibase.Algorithm { return multibase.BLS12381G2 }

// Sign hashes the message onto G2 and multiplies by the secret scalar.
// Signatures are minimal-signature-size BLS (message hashed onto G2,
// public key carried on G1), matching the pairing check used by Verify.
func (s blsSignerVerifier) Sign(_ context.Context, message []byte, privateKeyMultibase string) ([]byte, error) {
	alg, kind, key, err := multibase.Decode(privateKeyMultibase)
	if err != nil {
		return nil, err
	}
	if kind != multibase.PrivateKey {
		return nil, errors.CryptoErr("expected a BLS12-381 private key")
	}
	if err := assertAlgorithm(s.Algorithm(), alg); err != nil {
		return nil, err
	}
	var scalar fr.Element
	scalar.SetBigInt(new(big.Int).SetBytes(key))
	scalarBig := new(big.Int)
	scalar.BigInt(scalarBig)

	point, err := bls12381.HashToG2(message, blsDST)
	if err != nil {
		return nil, errors.CryptoErr("failed to hash message onto G2: %v", err)
	}
	var sig bls12381.G2Affine
	sig.ScalarMultiplication(&point, scalarBig)
	out := sig.Bytes()
	return out[:], nil
}

func (s blsSignerVerifier) Verify(_ context.Context, message, signature []byte, publicKeyMultibase string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	alg, kind, key, err := multibase.Decode(publicKeyMultibase)
	if err != nil || kind != multibase.PublicKey || alg != s.Algorithm() {
		return false
	}
	var pub bls12381.G1Affine
	if _, err := pub.SetBytes(key); err != nil {
		return false
	}
	var sig bls12381.G2Affine
	if _, err := sig.SetBytes(signature); err != nil {
		return false
	}
	hashed, err := bls12381.HashToG2(message, blsDST)
	if err != nil {
		return false
	}
	var negG1Gen bls12381.G1Affine
	_, _, g1gen, _ := bls12381.Generators()
	negG1Gen.Neg(&g1gen)

	// e(sig, G1) == e(H(m), pub)  <=>  e(sig, -G1) * e(H(m), pub) == 1
	res, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{negG1Gen, pub},
		[]bls12381.G2Affine{sig, hashed},
	)
	if err != nil {
		return false
	}
	return res
}

// derivePublicKey multiplies the G1 generator by the given scalar, used by
// key-generation helpers outside this package (e.g. keystore) to compute
// the BLS public key corresponding to a freshly generated private scalar.
func derivePublicKey(privateScalar []byte) ([]byte, error) {
	_, _, g1gen, _ := bls12381.Generators()
	var pub bls12381.G1Affine
	pub.ScalarMultiplication(&g1gen, new(big.Int).SetBytes(privateScalar))
	out := pub.Bytes()
	return out[:], nil
}

// DerivePublicKey exposes derivePublicKey for use by key-generation helpers.
func DerivePublicKey(privateScalar []byte) ([]byte, error) {
	return derivePublicKey(privateScalar)
}
