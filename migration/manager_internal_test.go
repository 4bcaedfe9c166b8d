package migration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.originals.dev/sdk/keystore"
	"go.originals.dev/sdk/lifecycle"
)

func TestRollbackFailsWhenCheckpointIsGone(t *testing.T) {
	lm := lifecycle.NewManager(lifecycle.WithKeyStore(keystore.New()))
	asset, err := lm.CreateAsset(context.Background(), []lifecycle.ResourceInput{
		{ID: "res1", Type: "text", ContentType: "text/plain", Hash: "deadbeef", Content: []byte("hi")},
	})
	require.NoError(t, err)

	mgr := NewManager(lm)
	cp := mgr.Checkpoints.Create(asset)
	mgr.Checkpoints.Delete(cp.ID)

	err = mgr.rollback(asset, cp.ID)
	assert.Error(t, err)
}

func TestFailFallsBackToQuarantinedWhenRollbackDidNotSucceed(t *testing.T) {
	lm := lifecycle.NewManager(lifecycle.WithKeyStore(keystore.New()))
	mgr := NewManager(lm)

	res := &Result{MigrationID: "migration-test", AssetID: "asset-test"}
	res, err := mgr.fail(context.Background(), res, InProgress, assertErr{"boom"}, Quarantined)
	require.Error(t, err)
	assert.Equal(t, Quarantined, res.FinalState)
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
