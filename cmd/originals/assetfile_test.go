package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/lifecycle"
	"go.originals.dev/sdk/resource"
)

func TestSaveAndLoadAssetRoundTripsResourceContent(t *testing.T) {
	dir := t.TempDir()
	asset := &lifecycle.OriginalsAsset{
		ID:           "did:peer:abc",
		CurrentLayer: did.Peer,
		Resources: []*resource.Resource{
			{ID: "res1", Type: "text", ContentType: "text/plain", Hash: resource.HashContent([]byte("hello")), Content: []byte("hello")},
		},
		Bindings:   map[did.Layer]string{did.Peer: "did:peer:abc"},
		Provenance: lifecycle.Provenance{CreatedAt: time.Now().UTC()},
	}

	path, err := saveAsset(dir, asset)
	require.NoError(t, err)

	loaded, err := loadAsset(path)
	require.NoError(t, err)
	assert.Equal(t, asset.ID, loaded.ID)
	require.Len(t, loaded.Resources, 1)
	assert.Equal(t, []byte("hello"), loaded.Resources[0].Content)
}
