// Package peer implements the did:peer layer: a self-contained DID whose
// document is derived entirely from the identifier itself, requiring no
// network resolution.
//
// Only numalgo 0 (single inception key, no relationships beyond the
// defaults) is supported, matching the spec's "ephemeral, offline-creatable"
// peer layer.
package peer

import (
	"context"
	"strings"

	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/encoding/multibase"
	"go.originals.dev/sdk/internal/errors"
	"go.originals.dev/sdk/keystore"
)

// Prefix is the DID method prefix for the peer layer.
const Prefix = "did:peer:0"

// Create generates a new key pair of the given algorithm in store under a
// reference derived from the resulting DID, and returns the peer DID
// document (its ID field carries the DID string).
func Create(_ context.Context, store *keystore.Store, alg multibase.Algorithm) (*did.Document, error) {
	// The verification method id is not known until the DID itself is
	// derived from the public key, so keys are generated under a scratch
	// reference and re-registered under their final id.
	scratchRef := "peer-pending"
	kp, err := store.Generate(alg, scratchRef)
	if err != nil {
		return nil, err
	}
	store.Forget(scratchRef)

	id := Prefix + kp.PublicKeyMultibase
	vmID := id + "#key-1"
	if err := store.Import(alg, vmID, kp.PrivateKeyMultibase); err != nil {
		return nil, err
	}

	doc := &did.Document{
		Context: []string{did.Context},
		ID:      id,
		VerificationMethod: []did.VerificationMethod{{
			ID:                 vmID,
			Type:               "Multikey",
			Controller:         id,
			PublicKeyMultibase: kp.PublicKeyMultibase,
		}},
		Authentication:       []did.Relationship{{Reference: vmID}},
		AssertionMethod:      []did.Relationship{{Reference: vmID}},
		CapabilityInvocation: []did.Relationship{{Reference: vmID}},
		CapabilityDelegation: []did.Relationship{{Reference: vmID}},
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Resolve reconstructs the peer DID document directly from the identifier,
// without any network access.
func Resolve(id string) (*did.Document, error) {
	if !strings.HasPrefix(id, Prefix) {
		return nil, errors.InputErr("not a did:peer numalgo-0 identifier: %s", id)
	}
	withoutFragment := id
	if i := strings.Index(id, "#"); i != -1 {
		withoutFragment = id[:i]
	}
	encodedKey := strings.TrimPrefix(withoutFragment, Prefix)
	alg, kind, _, err := multibase.Decode(encodedKey)
	if err != nil {
		return nil, errors.Wrap(err, "decoding did:peer key material")
	}
	if kind != multibase.PublicKey {
		return nil, errors.InputErr("did:peer identifier does not encode a public key")
	}

	vmID := withoutFragment + "#key-1"
	doc := &did.Document{
		Context: []string{did.Context},
		ID:      withoutFragment,
		VerificationMethod: []did.VerificationMethod{{
			ID:                 vmID,
			Type:               "Multikey",
			Controller:         withoutFragment,
			PublicKeyMultibase: encodedKey,
		}},
		Authentication:       []did.Relationship{{Reference: vmID}},
		AssertionMethod:      []did.Relationship{{Reference: vmID}},
		CapabilityInvocation: []did.Relationship{{Reference: vmID}},
		CapabilityDelegation: []did.Relationship{{Reference: vmID}},
	}
	_ = alg
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}
