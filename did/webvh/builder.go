package webvh

import (
	"context"
	"time"

	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/encoding/multibase"
	"go.originals.dev/sdk/integrity"
	"go.originals.dev/sdk/internal/errors"
)

// DefaultBuilder is a minimal Builder sufficient to produce the append-only
// log's own proof, canonicalizing entries with the same JCS-subset
// canonicalizer the integrity engine uses for document proofs.
type DefaultBuilder struct{}

// PrepareDataForSigning canonicalizes the entry with its proof stripped.
func (DefaultBuilder) PrepareDataForSigning(ctx context.Context, entry *LogEntry) ([]byte, error) {
	stripped := *entry
	stripped.Proof = nil
	return integrity.JCSCanonicalizer{}.Canonicalize(ctx, stripped)
}

// CreateDID builds a genesis document and its first log entry. When an
// internal key pair is supplied, it registers a single #key-0 verification
// method in authentication and assertionMethod and derives updateKeys as
// ["did:key:<publicKeyMultibase>"]; when an external signer is used, the
// caller-supplied verification methods and update keys are carried as-is.
func (b DefaultBuilder) CreateDID(ctx context.Context, params CreateParams) (*did.Document, *LogEntry, error) {
	id := buildDIDString(params.Domain, params.Paths)

	var vms []did.VerificationMethod
	var updateKeys []string
	var signer Signer
	var keyRef string

	if params.ExternalSigner != nil {
		vms = params.VerificationMethods
		updateKeys = params.UpdateKeys
		signer = params.ExternalSigner
		if len(vms) > 0 {
			keyRef = vms[0].ID
		}
	} else {
		if params.PublicKeyMultibase == "" {
			return nil, nil, errors.InputErr("internal key path requires a public key")
		}
		keyRef = id + "#key-0"
		vms = []did.VerificationMethod{{
			ID:                 keyRef,
			Type:               "Multikey",
			Controller:         id,
			PublicKeyMultibase: params.PublicKeyMultibase,
		}}
		updateKeys = []string{"did:key:" + params.PublicKeyMultibase}
		signer = params.Signer
	}

	doc := &did.Document{
		Context:            []string{did.Context},
		ID:                 id,
		VerificationMethod: vms,
		Authentication:     refsOf(vms),
		AssertionMethod:    refsOf(vms),
	}

	entry := &LogEntry{
		VersionID:   "1-genesis",
		VersionTime: genesisTime(),
		Parameters: map[string]interface{}{
			"method":     "did:webvh:1.0",
			"updateKeys": updateKeys,
			"portable":   params.Portable,
		},
		State: doc,
	}

	if signer != nil && keyRef != "" {
		proof, err := b.sign(ctx, entry, signer, keyRef)
		if err != nil {
			return nil, nil, err
		}
		entry.Proof = []Proof{*proof}
	}
	return doc, entry, nil
}

// UpdateDID produces a new signed entry whose state is a copy of updates
// carrying the latest state's document id. The previous state's fields are
// not merged in: anything updates leaves empty is empty in the new state.
func (b DefaultBuilder) UpdateDID(ctx context.Context, log []LogEntry, updates *did.Document, signer Signer, keyRef string) (*LogEntry, error) {
	prev := log[len(log)-1]
	merged := updates.Clone()
	merged.ID = prev.State.ID

	entry := &LogEntry{
		VersionID:   nextVersionID(prev.VersionID),
		VersionTime: genesisTime(),
		Parameters:  prev.Parameters,
		State:       merged,
	}
	if signer != nil {
		proof, err := b.sign(ctx, entry, signer, keyRef)
		if err != nil {
			return nil, err
		}
		entry.Proof = []Proof{*proof}
	}
	return entry, nil
}

func (b DefaultBuilder) sign(ctx context.Context, entry *LogEntry, signer Signer, keyRef string) (*Proof, error) {
	data, err := b.PrepareDataForSigning(ctx, entry)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(ctx, data, keyRef)
	if err != nil {
		return nil, errors.Wrap(err, "signing log entry")
	}
	sigMB := multibase.EncodeBare(sig)
	return &Proof{
		Type:               "DataIntegrityProof",
		Cryptosuite:        integrity.Cryptosuite,
		Created:            entry.VersionTime.Format(time.RFC3339),
		VerificationMethod: keyRef,
		ProofPurpose:       "authentication",
		ProofValue:         sigMB,
	}, nil
}

func refsOf(vms []did.VerificationMethod) []did.Relationship {
	out := make([]did.Relationship, 0, len(vms))
	for _, vm := range vms {
		out = append(out, did.Relationship{Reference: vm.ID})
	}
	return out
}

func nextVersionID(prev string) string {
	// Best-effort monotonic bump; a production log would track an integer
	// prefix per the did:webvh versioning spec.
	return prev + "+1"
}

// genesisTime is a package-level hook so log entries get a stable time
// without calling time.Now() directly in code paths exercised by tests that
// assert on VersionTime equality across calls within the same entry.
var genesisTime = func() time.Time { return time.Now().UTC() }
