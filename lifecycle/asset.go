package lifecycle

import (
	"time"

	"go.originals.dev/sdk/credential"
	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/internal/errors"
	"go.originals.dev/sdk/resource"
)

// MigrationRecord captures one layer transition in an asset's provenance.
type MigrationRecord struct {
	From          did.Layer `json:"from"`
	To            did.Layer `json:"to"`
	Timestamp     time.Time `json:"timestamp"`
	TransactionID string    `json:"transactionId,omitempty"`
	InscriptionID string    `json:"inscriptionId,omitempty"`
	Satoshi       *uint64   `json:"satoshi,omitempty"`
	CommitTxID    string    `json:"commitTxId,omitempty"`
	RevealTxID    string    `json:"revealTxId,omitempty"`
	FeeRate       float64   `json:"feeRate,omitempty"`
	BatchID       string    `json:"batchId,omitempty"`
	BatchIndex    int       `json:"batchIndex,omitempty"`
	FeePaid       *uint64   `json:"feePaid,omitempty"`
}

// TransferRecord captures one ownership transfer in an asset's provenance.
type TransferRecord struct {
	From          string    `json:"from"`
	To            string    `json:"to"`
	Timestamp     time.Time `json:"timestamp"`
	TransactionID string    `json:"transactionId"`
}

// Provenance is the append-only history attached to an asset.
type Provenance struct {
	CreatedAt  time.Time         `json:"createdAt"`
	Creator    string            `json:"creator"`
	Migrations []MigrationRecord `json:"migrations,omitempty"`
	Transfers  []TransferRecord  `json:"transfers,omitempty"`
}

// OriginalsAsset is the lifecycle aggregate root: a DID-identified bundle of
// resources that migrates forward across peer -> webvh -> btco layers.
type OriginalsAsset struct {
	ID           string                `json:"id"`
	CurrentLayer did.Layer             `json:"currentLayer"`
	Resources    []*resource.Resource  `json:"resources"`
	Credentials  []credential.Credential `json:"credentials"`
	Bindings     map[did.Layer]string  `json:"bindings"`
	Provenance   Provenance            `json:"provenance"`
}

// Clone returns a deep-enough copy suitable for migration checkpointing:
// each resource is copied by value, and the credential slice, the bindings
// map and the provenance slices are copied, so changing those fields on
// either asset does not affect the other. Resource content bytes, resource
// metadata maps and the nested values inside credentials are still shared.
func (a *OriginalsAsset) Clone() *OriginalsAsset {
	clone := &OriginalsAsset{
		ID:           a.ID,
		CurrentLayer: a.CurrentLayer,
		Provenance:   a.Provenance,
	}
	clone.Resources = make([]*resource.Resource, len(a.Resources))
	for i, r := range a.Resources {
		if r != nil {
			rc := *r
			clone.Resources[i] = &rc
		}
	}
	clone.Credentials = append([]credential.Credential(nil), a.Credentials...)
	clone.Bindings = make(map[did.Layer]string, len(a.Bindings))
	for k, v := range a.Bindings {
		clone.Bindings[k] = v
	}
	clone.Provenance.Migrations = append([]MigrationRecord(nil), a.Provenance.Migrations...)
	clone.Provenance.Transfers = append([]TransferRecord(nil), a.Provenance.Transfers...)
	return clone
}

// validTransitions is the forward-only layer transition table: peer can
// migrate to webvh or btco, webvh can migrate to btco, btco is terminal.
var validTransitions = map[did.Layer][]did.Layer{
	did.Peer:  {did.WebVH, did.Btco},
	did.WebVH: {did.Btco},
	did.Btco:  {},
}

// CheckTransition reports an InvalidTransition error unless from->to appears
// in the forward-only transition table.
func CheckTransition(from, to did.Layer) error {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return errors.InvalidTransitionErr("cannot migrate asset from layer %q to %q", from, to)
}
