// Package integrity implements the DataIntegrityProof engine: canonicalize,
// hash, and sign/verify proof envelopes over arbitrary documents.
package integrity

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"sort"
	"time"

	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/encoding/multibase"
	"go.originals.dev/sdk/internal/errors"
)

// Cryptosuite is the only shipped cryptosuite name.
const Cryptosuite = "eddsa-rdfc-2022"

// Proof is a W3C DataIntegrityProof envelope.
type Proof struct {
	Type               string `json:"type"`
	Cryptosuite        string `json:"cryptosuite"`
	Created            string `json:"created"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	ProofValue         string `json:"proofValue"`
}

// Options configures proof creation and verification.
type Options struct {
	VerificationMethod string
	ProofPurpose       string
	Created            time.Time
}

// VerificationResult reports the outcome of VerifyProof.
type VerificationResult struct {
	Verified bool
	Errors   []string
}

// Canonicalizer turns a document (proof stripped or proof-options-only) into
// canonical bytes. The out-of-scope real JSON-LD RDF canonicalizer is
// injected by the embedding application; JCSCanonicalizer ships as a
// sufficient default.
type Canonicalizer interface {
	Canonicalize(ctx context.Context, doc interface{}) ([]byte, error)
}

// Signer signs canonicalized bytes with the secret behind
// privateKeyMultibase.
type Signer interface {
	Sign(ctx context.Context, message []byte, privateKeyMultibase string) ([]byte, error)
}

// Verifier verifies a signature against canonicalized bytes.
type Verifier interface {
	Verify(ctx context.Context, message, signature []byte, publicKeyMultibase string) bool
}

// Engine creates and verifies DataIntegrityProof envelopes.
type Engine struct {
	Canonicalizer Canonicalizer
	Resolve       func(ctx context.Context, vmID string) (*did.VerificationMethod, error)
}

// NewEngine constructs an Engine. A nil canonicalizer defaults to
// JCSCanonicalizer.
func NewEngine(canon Canonicalizer, resolve func(ctx context.Context, vmID string) (*did.VerificationMethod, error)) *Engine {
	if canon == nil {
		canon = JCSCanonicalizer{}
	}
	return &Engine{Canonicalizer: canon, Resolve: resolve}
}

// CreateProof produces a signed DataIntegrityProof over doc. Signing bytes
// are SHA256(canonicalize(doc)) || SHA256(canonicalize(proofOptions)).
func (e *Engine) CreateProof(ctx context.Context, doc interface{}, signer Signer, privateKeyMultibase string, opts Options) (*Proof, error) {
	if opts.VerificationMethod == "" {
		return nil, errors.InputErr("verificationMethod is required to create a proof")
	}
	if opts.ProofPurpose == "" {
		opts.ProofPurpose = "assertionMethod"
	}
	if opts.Created.IsZero() {
		opts.Created = time.Now().UTC()
	}

	docBytes, err := e.Canonicalizer.Canonicalize(ctx, doc)
	if err != nil {
		return nil, errors.Wrap(err, "canonicalizing document")
	}
	proofOptions := map[string]interface{}{
		"type":               "DataIntegrityProof",
		"cryptosuite":        Cryptosuite,
		"created":            opts.Created.Format(time.RFC3339),
		"verificationMethod": opts.VerificationMethod,
		"proofPurpose":       opts.ProofPurpose,
	}
	optBytes, err := e.Canonicalizer.Canonicalize(ctx, proofOptions)
	if err != nil {
		return nil, errors.Wrap(err, "canonicalizing proof options")
	}

	signingInput := signingBytes(docBytes, optBytes)
	sig, err := signer.Sign(ctx, signingInput, privateKeyMultibase)
	if err != nil {
		return nil, errors.Wrap(err, "signing proof")
	}

	return &Proof{
		Type:               "DataIntegrityProof",
		Cryptosuite:        Cryptosuite,
		Created:            opts.Created.Format(time.RFC3339),
		VerificationMethod: opts.VerificationMethod,
		ProofPurpose:       opts.ProofPurpose,
		ProofValue:         multibase.EncodeBare(sig),
	}, nil
}

// VerifyProof recomputes the signing bytes and verifies proof.ProofValue
// against the verification method's public key, resolved via e.Resolve.
// Failures of any kind (resolution, decoding, mismatch) collapse to a false
// Verified result with diagnostic Errors rather than propagating an error,
// matching the "verify swallows exceptions" propagation policy.
func (e *Engine) VerifyProof(ctx context.Context, doc interface{}, proof *Proof, verifier Verifier) *VerificationResult {
	res := &VerificationResult{}
	if proof == nil {
		res.Errors = append(res.Errors, "no proof supplied")
		return res
	}
	if proof.Cryptosuite != Cryptosuite {
		res.Errors = append(res.Errors, "unsupported cryptosuite: "+proof.Cryptosuite)
		return res
	}
	if e.Resolve == nil {
		res.Errors = append(res.Errors, "no verification method resolver configured")
		return res
	}
	vm, err := e.Resolve(ctx, proof.VerificationMethod)
	if err != nil || vm == nil {
		res.Errors = append(res.Errors, "could not resolve verification method: "+proof.VerificationMethod)
		return res
	}
	sig, err := multibase.DecodeBare(proof.ProofValue)
	if err != nil {
		res.Errors = append(res.Errors, "invalid proof value encoding")
		return res
	}

	docBytes, err := e.Canonicalizer.Canonicalize(ctx, doc)
	if err != nil {
		res.Errors = append(res.Errors, "canonicalizing document: "+err.Error())
		return res
	}
	proofOptions := map[string]interface{}{
		"type":               proof.Type,
		"cryptosuite":        proof.Cryptosuite,
		"created":            proof.Created,
		"verificationMethod": proof.VerificationMethod,
		"proofPurpose":       proof.ProofPurpose,
	}
	optBytes, err := e.Canonicalizer.Canonicalize(ctx, proofOptions)
	if err != nil {
		res.Errors = append(res.Errors, "canonicalizing proof options: "+err.Error())
		return res
	}

	signingInput := signingBytes(docBytes, optBytes)
	if !verifier.Verify(ctx, signingInput, sig, vm.PublicKeyMultibase) {
		res.Errors = append(res.Errors, "signature verification failed")
		return res
	}
	res.Verified = true
	return res
}

func signingBytes(docBytes, optBytes []byte) []byte {
	docHash := sha256.Sum256(docBytes)
	optHash := sha256.Sum256(optBytes)
	out := make([]byte, 0, len(docHash)+len(optHash))
	out = append(out, docHash[:]...)
	out = append(out, optHash[:]...)
	return out
}

// JCSCanonicalizer re-marshals arbitrary JSON-compatible values with object
// keys sorted, approximating JCS (RFC 8785) closely enough for this SDK's
// own proofs. It does not implement full JSON-LD RDF dataset canonicalization,
// which is explicitly out of scope.
type JCSCanonicalizer struct{}

// Canonicalize implements Canonicalizer.
func (JCSCanonicalizer) Canonicalize(_ context.Context, v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling value for canonicalization")
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, errors.Wrap(err, "decoding value for canonicalization")
	}
	var buf bytes.Buffer
	if err := encodeCanonical(&buf, decoded); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeCanonical(buf *bytes.Buffer, v interface{}) error {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			if err := encodeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []interface{}:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeCanonical(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}
