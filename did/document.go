// Package did implements the shared DID document data model and the
// DIDManager that creates, resolves, and migrates documents across the
// peer, webvh and btco layers.
//
// The document shape mirrors the teacher's bryk-io-pkg `did` package
// (Document, VerificationMethod, relationship arrays), generalized from a
// free-form multi-method identifier grammar to the Originals SDK's fixed
// three-layer model.
package did

import (
	"encoding/json"

	"go.originals.dev/sdk/internal/errors"
)

// Layer identifies one of the three progressively stronger anchoring
// layers a DID can live at.
type Layer string

const (
	// Peer is a self-contained, ephemeral DID.
	Peer Layer = "peer"
	// WebVH is a DID published to an HTTPS origin as an append-only log.
	WebVH Layer = "webvh"
	// Btco is a DID anchored to a Bitcoin-like chain via an inscription.
	Btco Layer = "btco"
)

// Context is the default JSON-LD context every document carries.
const Context = "https://www.w3.org/ns/did/v1"

// VerificationMethod declares a public key usable to authenticate or
// authorize interactions with the DID subject.
type VerificationMethod struct {
	ID                 string `json:"id" yaml:"id"`
	Type               string `json:"type" yaml:"type"`
	Controller         string `json:"controller" yaml:"controller"`
	PublicKeyMultibase string `json:"publicKeyMultibase,omitempty" yaml:"publicKeyMultibase,omitempty"`
}

// ServiceEndpoint declares a means of communicating with the DID subject.
type ServiceEndpoint struct {
	ID              string      `json:"id" yaml:"id"`
	Type            string      `json:"type" yaml:"type"`
	ServiceEndpoint interface{} `json:"serviceEndpoint" yaml:"serviceEndpoint"`
}

// Relationship is either a bare verification method ID reference or an
// inline verification method, per the DID core spec.
type Relationship struct {
	Reference string
	Inline    *VerificationMethod
}

// MarshalJSON encodes a Relationship as either a bare string or an inline
// object, matching the DID core spec's "list of strings or objects" shape.
func (r Relationship) MarshalJSON() ([]byte, error) {
	if r.Inline != nil {
		return json.Marshal(r.Inline)
	}
	return json.Marshal(r.Reference)
}

// UnmarshalJSON decodes a Relationship from either shape.
func (r *Relationship) UnmarshalJSON(data []byte) error {
	var ref string
	if err := json.Unmarshal(data, &ref); err == nil {
		r.Reference = ref
		return nil
	}
	var vm VerificationMethod
	if err := json.Unmarshal(data, &vm); err != nil {
		return err
	}
	r.Inline = &vm
	return nil
}

// ID returns the verification method id this relationship points to,
// whether declared inline or by reference.
func (r Relationship) ID() string {
	if r.Inline != nil {
		return r.Inline.ID
	}
	return r.Reference
}

// Document represents a valid DID document instance.
// https://w3c.github.io/did-core/#core-properties
type Document struct {
	Context              []string              `json:"@context" yaml:"-"`
	ID                   string                `json:"id" yaml:"id"`
	VerificationMethod   []VerificationMethod  `json:"verificationMethod,omitempty" yaml:"verificationMethod,omitempty"`
	Authentication       []Relationship        `json:"authentication,omitempty" yaml:"authentication,omitempty"`
	AssertionMethod      []Relationship        `json:"assertionMethod,omitempty" yaml:"assertionMethod,omitempty"`
	KeyAgreement         []Relationship        `json:"keyAgreement,omitempty" yaml:"keyAgreement,omitempty"`
	CapabilityInvocation []Relationship        `json:"capabilityInvocation,omitempty" yaml:"capabilityInvocation,omitempty"`
	CapabilityDelegation []Relationship        `json:"capabilityDelegation,omitempty" yaml:"capabilityDelegation,omitempty"`
	Service              []ServiceEndpoint     `json:"service,omitempty" yaml:"service,omitempty"`
}

// FindVerificationMethod returns the verification method with the given id,
// if declared on the document.
func (d *Document) FindVerificationMethod(id string) (*VerificationMethod, bool) {
	for i := range d.VerificationMethod {
		if d.VerificationMethod[i].ID == id {
			return &d.VerificationMethod[i], true
		}
	}
	return nil, false
}

// Validate checks the invariants from the spec's data model: a non-empty
// ordered @context including the DID core context, and every relationship
// reference resolving to a declared verification method.
func (d *Document) Validate() error {
	if len(d.Context) == 0 {
		return errors.IntegrityErr("document %q: missing @context", d.ID)
	}
	found := false
	for _, c := range d.Context {
		if c == Context {
			found = true
			break
		}
	}
	if !found {
		return errors.IntegrityErr("document %q: @context must include %s", d.ID, Context)
	}
	if d.ID == "" {
		return errors.IntegrityErr("document: missing id")
	}
	relSets := [][]Relationship{
		d.Authentication, d.AssertionMethod, d.KeyAgreement,
		d.CapabilityInvocation, d.CapabilityDelegation,
	}
	for _, set := range relSets {
		for _, rel := range set {
			if rel.Inline != nil {
				continue
			}
			if _, ok := d.FindVerificationMethod(rel.ID()); !ok {
				return errors.IntegrityErr("document %q: relationship references unknown verification method %q", d.ID, rel.ID())
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil
	}
	var cp Document
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil
	}
	return &cp
}
