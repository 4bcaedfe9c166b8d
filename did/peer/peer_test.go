package peer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.originals.dev/sdk/did/peer"
	"go.originals.dev/sdk/encoding/multibase"
	"go.originals.dev/sdk/keystore"
)

func TestCreateAndResolveRoundTrip(t *testing.T) {
	store := keystore.New()
	doc, err := peer.Create(context.Background(), store, multibase.Ed25519)
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)
	require.True(t, store.Has(doc.ID+"#key-1"))

	resolved, err := peer.Resolve(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, resolved.ID)
	assert.Equal(t, doc.VerificationMethod[0].PublicKeyMultibase, resolved.VerificationMethod[0].PublicKeyMultibase)
}

func TestResolveRejectsForeignPrefix(t *testing.T) {
	_, err := peer.Resolve("did:web:example.com")
	assert.Error(t, err)
}
