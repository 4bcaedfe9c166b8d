package did_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.originals.dev/sdk/did"
)

func TestDocumentValidateRequiresContext(t *testing.T) {
	doc := &did.Document{ID: "did:peer:0zKey"}
	assert.Error(t, doc.Validate())
}

func TestDocumentValidateRejectsDanglingRelationship(t *testing.T) {
	doc := &did.Document{
		Context:        []string{did.Context},
		ID:             "did:peer:0zKey",
		Authentication: []did.Relationship{{Reference: "did:peer:0zKey#missing"}},
	}
	assert.Error(t, doc.Validate())
}

func TestDocumentValidateAcceptsResolvedRelationship(t *testing.T) {
	doc := &did.Document{
		Context: []string{did.Context},
		ID:      "did:peer:0zKey",
		VerificationMethod: []did.VerificationMethod{{
			ID:                 "did:peer:0zKey#key-1",
			Type:               "Multikey",
			Controller:         "did:peer:0zKey",
			PublicKeyMultibase: "zKey",
		}},
		Authentication: []did.Relationship{{Reference: "did:peer:0zKey#key-1"}},
	}
	require.NoError(t, doc.Validate())
}

func TestRelationshipJSONRoundTrip(t *testing.T) {
	ref := did.Relationship{Reference: "did:peer:0zKey#key-1"}
	raw, err := json.Marshal(ref)
	require.NoError(t, err)
	assert.Equal(t, `"did:peer:0zKey#key-1"`, string(raw))

	var decoded did.Relationship
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, ref.Reference, decoded.Reference)
}

func TestDocumentClone(t *testing.T) {
	doc := &did.Document{Context: []string{did.Context}, ID: "did:peer:0zKey"}
	clone := doc.Clone()
	require.NotNil(t, clone)
	clone.ID = "did:peer:0zOther"
	assert.Equal(t, "did:peer:0zKey", doc.ID)
}
