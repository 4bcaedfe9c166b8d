// Package keystore is the sole owner of secret key material across the
// SDK. Components hold only borrowed references (a verification method
// id) and must go through a KeyStore to sign anything; secrets are never
// retained outside this package past a single sign call.
package keystore

import (
	"context"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"math/big"
	"sync"

	"github.com/awnumar/memguard"
	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"

	blssigner "go.originals.dev/sdk/crypto/signer"
	"go.originals.dev/sdk/encoding/multibase"
	"go.originals.dev/sdk/internal/errors"
)

// Signer is the minimal signing contract the store needs; satisfied by
// *signer.Suite and by any single-algorithm signer.Signer implementation.
type Signer interface {
	Sign(ctx context.Context, message []byte, privateKeyMultibase string) ([]byte, error)
}

// KeyPair describes a generated key: both fields are multibase strings.
// Generate returns it to the caller with the encoded private key included;
// the store keeps its own copy of the secret in a locked buffer.
type KeyPair struct {
	Algorithm           multibase.Algorithm
	PublicKeyMultibase  string
	PrivateKeyMultibase string
}

// entry holds a secret key wrapped in a memguard locked buffer, wiped when
// Forget destroys it.
type entry struct {
	alg multibase.Algorithm
	lb  *memguard.LockedBuffer
}

// Store owns secret key material keyed by an absolutized verification
// method id (e.g. "did:peer:...#key-0").
type Store struct {
	mu      sync.RWMutex
	secrets map[string]*entry
}

// New returns an empty key store.
func New() *Store {
	return &Store{secrets: make(map[string]*entry)}
}

// Generate creates a new key pair for alg, registers its secret under ref,
// and returns the public-facing KeyPair.
func (s *Store) Generate(alg multibase.Algorithm, ref string) (*KeyPair, error) {
	var pub, priv []byte
	var err error
	switch alg {
	case multibase.Ed25519:
		pub, priv, err = generateEd25519()
	case multibase.Secp256k1:
		pub, priv, err = generateSecp256k1()
	case multibase.P256:
		pub, priv, err = generateP256()
	case multibase.BLS12381G2:
		pub, priv, err = generateBLS12381G2()
	default:
		return nil, errors.CryptoErr("unsupported algorithm: %s", alg)
	}
	if err != nil {
		return nil, err
	}

	pubMB, err := multibase.Encode(alg, multibase.PublicKey, pub)
	if err != nil {
		return nil, err
	}
	privMB, err := multibase.Encode(alg, multibase.PrivateKey, priv)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.secrets[ref] = &entry{alg: alg, lb: memguard.NewBufferFromBytes(priv)}
	s.mu.Unlock()

	return &KeyPair{
		Algorithm:           alg,
		PublicKeyMultibase:  pubMB,
		PrivateKeyMultibase: privMB,
	}, nil
}

// Import registers an externally generated private key under ref.
func (s *Store) Import(alg multibase.Algorithm, ref, privateKeyMultibase string) error {
	gotAlg, kind, key, err := multibase.Decode(privateKeyMultibase)
	if err != nil {
		return err
	}
	if kind != multibase.PrivateKey || gotAlg != alg {
		return errors.CryptoErr("key material does not match algorithm %s", alg)
	}
	s.mu.Lock()
	s.secrets[ref] = &entry{alg: alg, lb: memguard.NewBufferFromBytes(key)}
	s.mu.Unlock()
	return nil
}

// Sign produces a signature over message using the secret registered under
// ref, via the given signer. The secret's multibase form is reconstructed
// only for the duration of this call and never returned to the caller.
func (s *Store) Sign(ctx context.Context, ref string, message []byte, signer Signer) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.secrets[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NotFoundErr("no key registered for %q", ref)
	}
	privMB, err := multibase.Encode(e.alg, multibase.PrivateKey, e.lb.Bytes())
	if err != nil {
		return nil, err
	}
	return signer.Sign(ctx, message, privMB)
}

// Has reports whether a secret is registered under ref.
func (s *Store) Has(ref string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.secrets[ref]
	return ok
}

// Forget destroys and removes the secret registered under ref.
func (s *Store) Forget(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.secrets[ref]; ok {
		e.lb.Destroy()
		delete(s.secrets, ref)
	}
}

func generateEd25519() (pub, priv []byte, err error) {
	p, pr, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, errors.CryptoErr("failed to generate Ed25519 key: %v", err)
	}
	return p, pr, nil
}

func generateSecp256k1() (pub, priv []byte, err error) {
	pr, err := secp.GeneratePrivateKey()
	if err != nil {
		return nil, nil, errors.CryptoErr("failed to generate secp256k1 key: %v", err)
	}
	return pr.PubKey().SerializeCompressed(), pr.Serialize(), nil
}

func generateP256() (pub, priv []byte, err error) {
	curve := elliptic.P256()
	d, err := rand.Int(rand.Reader, curve.Params().N)
	if err != nil {
		return nil, nil, errors.CryptoErr("failed to generate P-256 key: %v", err)
	}
	x, y := curve.ScalarBaseMult(d.Bytes())
	pubBytes := elliptic.MarshalCompressed(curve, x, y)
	privBytes := make([]byte, 32)
	d.FillBytes(privBytes)
	return pubBytes, privBytes, nil
}

func generateBLS12381G2() (pub, priv []byte, err error) {
	// BLS12-381 scalar field order, used to reduce the random seed into a
	// valid private scalar.
	order, ok := new(big.Int).SetString(
		"52435875175126190479447740508185965837690552500527637822603658699938581184513", 10,
	)
	if !ok {
		return nil, nil, errors.CryptoErr("failed to parse BLS12-381 scalar field order")
	}
	d, err := rand.Int(rand.Reader, order)
	if err != nil {
		return nil, nil, errors.CryptoErr("failed to generate BLS12-381 key: %v", err)
	}
	privBytes := make([]byte, 32)
	d.FillBytes(privBytes)
	pubBytes, err := blssigner.DerivePublicKey(privBytes)
	if err != nil {
		return nil, nil, err
	}
	return pubBytes, privBytes, nil
}
