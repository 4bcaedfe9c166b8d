package btco_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/did/btco"
)

func TestMigrateToDocumentCarriesKeyMaterial(t *testing.T) {
	src := &did.Document{
		Context: []string{did.Context},
		ID:      "did:peer:0zExample",
		VerificationMethod: []did.VerificationMethod{{
			ID:                 "did:peer:0zExample#key-1",
			Type:               "Multikey",
			Controller:         "did:peer:0zExample",
			PublicKeyMultibase: "zExampleKey",
		}},
	}
	out, err := btco.MigrateToDocument(src, 12345, btco.Mainnet)
	require.NoError(t, err)
	assert.Equal(t, "did:btco:12345", out.ID)
	require.Len(t, out.VerificationMethod, 1)
	assert.Equal(t, "did:btco:12345#key-1", out.VerificationMethod[0].ID)
}

func TestMigrateToDocumentRejectsExcessiveSatoshi(t *testing.T) {
	_, err := btco.MigrateToDocument(&did.Document{}, btco.MaxSupply+1, btco.Mainnet)
	assert.Error(t, err)
}

func TestMigrateToDocumentNetworkPrefixes(t *testing.T) {
	doc := &did.Document{Context: []string{did.Context}, ID: "did:peer:0zX"}
	out, err := btco.MigrateToDocument(doc, 1, btco.Regtest)
	require.NoError(t, err)
	assert.Equal(t, "did:btco:reg:1", out.ID)

	out, err = btco.MigrateToDocument(doc, 1, btco.Signet)
	require.NoError(t, err)
	assert.Equal(t, "did:btco:sig:1", out.ID)
}

type fakeProvider struct {
	ids      []string
	metadata map[string][]byte
	content  map[string]string
}

func (f *fakeProvider) InscriptionIDs(context.Context, uint64) ([]string, error) {
	return f.ids, nil
}

func (f *fakeProvider) FetchMetadata(_ context.Context, id string) ([]byte, error) {
	return f.metadata[id], nil
}

func (f *fakeProvider) FetchContent(_ context.Context, id string) ([]byte, error) {
	return []byte(f.content[id]), nil
}

func TestResolverPicksLastValidInscription(t *testing.T) {
	targetID := "did:btco:777"
	docJSON := `{"@context":["https://www.w3.org/ns/did/v1"],"id":"did:btco:777"}`
	provider := &fakeProvider{
		ids: []string{"insc-1", "insc-2"},
		content: map[string]string{
			"insc-1": "BTCO DID: did:btco:777",
			"insc-2": "BTCO DID: did:btco:777",
		},
		metadata: map[string][]byte{
			"insc-1": []byte(docJSON),
			"insc-2": []byte(docJSON),
		},
	}
	resolver := btco.NewResolver(provider)
	res, err := resolver.Resolve(context.Background(), targetID, "application/did+json")
	require.NoError(t, err)
	require.NotNil(t, res.Document)
	assert.Equal(t, "insc-2", res.ResolutionMetadata.InscriptionID)
}

func TestResolverHonorsDeactivation(t *testing.T) {
	targetID := "did:btco:42"
	docJSON := `{"@context":["https://www.w3.org/ns/did/v1"],"id":"did:btco:42"}`
	provider := &fakeProvider{
		ids: []string{"insc-1", "insc-2"},
		content: map[string]string{
			"insc-1": "BTCO DID: did:btco:42",
			"insc-2": "🔥",
		},
		metadata: map[string][]byte{
			"insc-1": []byte(docJSON),
		},
	}
	resolver := btco.NewResolver(provider)
	res, err := resolver.Resolve(context.Background(), targetID, "*/*")
	require.NoError(t, err)
	require.NotNil(t, res.Document)
	assert.Equal(t, "insc-1", res.ResolutionMetadata.InscriptionID)
}

func TestResolverRejectsTrailingPath(t *testing.T) {
	resolver := btco.NewResolver(&fakeProvider{})
	_, err := resolver.Resolve(context.Background(), "did:btco:1/resolve", "application/json")
	assert.Error(t, err)
}

func TestResolverNotFoundOnEmptyInscriptions(t *testing.T) {
	resolver := btco.NewResolver(&fakeProvider{ids: nil})
	_, err := resolver.Resolve(context.Background(), "did:btco:5", "application/json")
	assert.Error(t, err)
}
