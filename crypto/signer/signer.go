// Package signer implements the polymorphic Signer/Verifier suite over
// Ed25519, secp256k1, P-256 and BLS12-381 G2, dispatched by the algorithm
// tag decoded from a key's multicodec header rather than by inheritance.
package signer

import (
	"context"

	"go.originals.dev/sdk/encoding/multibase"
	"go.originals.dev/sdk/internal/errors"
)

// Signer produces a signature over a message using a private key encoded
// in multibase form.
type Signer interface {
	Algorithm() multibase.Algorithm
	Sign(ctx context.Context, message []byte, privateKeyMultibase string) ([]byte, error)
}

// Verifier checks a signature over a message against a public key encoded
// in multibase form. Verify never propagates underlying library panics or
// errors; it returns false.
type Verifier interface {
	Algorithm() multibase.Algorithm
	Verify(ctx context.Context, message, signature []byte, publicKeyMultibase string) bool
}

// SignerVerifier combines both roles, the shape every concrete algorithm
// implementation satisfies.
type SignerVerifier interface {
	Signer
	Verifier
}

// Suite dispatches sign/verify calls to the concrete implementation that
// matches a key's algorithm, resolved from its multicodec header.
type Suite struct {
	impls map[multibase.Algorithm]SignerVerifier
}

// NewSuite returns a Suite wired with the default implementations for all
// four supported algorithms.
func NewSuite() *Suite {
	s := &Suite{impls: make(map[multibase.Algorithm]SignerVerifier)}
	s.Register(newEd25519())
	s.Register(newSecp256k1())
	s.Register(newP256())
	s.Register(newBLS12381G2())
	return s
}

// Register adds (or replaces) the implementation used for its algorithm.
func (s *Suite) Register(impl SignerVerifier) {
	s.impls[impl.Algorithm()] = impl
}

// For returns the registered implementation for alg, if any.
func (s *Suite) For(alg multibase.Algorithm) (SignerVerifier, bool) {
	impl, ok := s.impls[alg]
	return impl, ok
}

// Sign decodes the algorithm tag embedded in privateKeyMultibase and
// dispatches to the matching signer.
func (s *Suite) Sign(ctx context.Context, message []byte, privateKeyMultibase string) ([]byte, error) {
	alg, kind, _, err := multibase.Decode(privateKeyMultibase)
	if err != nil {
		return nil, err
	}
	if kind != multibase.PrivateKey {
		return nil, errors.CryptoErr("expected a private key, got a public key")
	}
	impl, ok := s.For(alg)
	if !ok {
		return nil, errors.CryptoErr("no signer registered for algorithm %s", alg)
	}
	return impl.Sign(ctx, message, privateKeyMultibase)
}

// Verify decodes the algorithm tag embedded in publicKeyMultibase and
// dispatches to the matching verifier. Any failure, including an unknown
// algorithm, results in `false` rather than an error.
func (s *Suite) Verify(ctx context.Context, message, signature []byte, publicKeyMultibase string) bool {
	alg, kind, _, err := multibase.Decode(publicKeyMultibase)
	if err != nil || kind != multibase.PublicKey {
		return false
	}
	impl, ok := s.For(alg)
	if !ok {
		return false
	}
	return impl.Verify(ctx, message, signature, publicKeyMultibase)
}

// assertAlgorithm fails fast when a signer/verifier is handed a key whose
// embedded algorithm tag doesn't match its own, per the spec's "WrongKeyType"
// contract.
func assertAlgorithm(expect, got multibase.Algorithm) error {
	if expect != got {
		return errors.CryptoErr("wrong key type: expected %s, got %s", expect, got)
	}
	return nil
}
