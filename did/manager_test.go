package did_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.originals.dev/sdk/did"
)

func TestManagerDispatchesOnPrefix(t *testing.T) {
	peerDoc := &did.Document{Context: []string{did.Context}, ID: "did:peer:0zKey"}
	mgr := did.NewManager(
		did.ResolverFunc(func(_ context.Context, id string) (*did.Document, error) { return peerDoc, nil }),
		nil,
		nil,
		nil,
	)
	doc, err := mgr.ResolveDID(context.Background(), "did:peer:0zKey")
	require.NoError(t, err)
	assert.Equal(t, peerDoc, doc)
}

func TestManagerReturnsSkeletonForUnknownPrefix(t *testing.T) {
	mgr := did.NewManager(nil, nil, nil, nil)
	doc, err := mgr.ResolveDID(context.Background(), "did:example:123")
	require.NoError(t, err)
	assert.Equal(t, "did:example:123", doc.ID)
}

func TestManagerPropagatesResolverError(t *testing.T) {
	mgr := did.NewManager(
		nil,
		did.ResolverFunc(func(_ context.Context, id string) (*did.Document, error) {
			return nil, assert.AnError
		}),
		nil,
		nil,
	)
	_, err := mgr.ResolveDID(context.Background(), "did:webvh:example.com")
	assert.Error(t, err)
}

func TestManagerNotFoundWhenLayerUnconfigured(t *testing.T) {
	mgr := did.NewManager(nil, nil, nil, nil)
	_, err := mgr.ResolveDID(context.Background(), "did:btco:1")
	assert.Error(t, err)
}
