package migration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/keystore"
	"go.originals.dev/sdk/lifecycle"
	"go.originals.dev/sdk/migration"
	"go.originals.dev/sdk/ordinals"
	"go.originals.dev/sdk/storage"
)

func sampleResources() []lifecycle.ResourceInput {
	return []lifecycle.ResourceInput{
		{ID: "res1", Type: "text", ContentType: "text/plain", Hash: "deadbeef", Content: []byte("hello world")},
	}
}

type fakeOrdinals struct{ satoshi uint64 }

func (f *fakeOrdinals) GetSatInfo(ctx context.Context, satoshi uint64) (*ordinals.SatInfo, error) {
	return &ordinals.SatInfo{}, nil
}
func (f *fakeOrdinals) ResolveInscription(ctx context.Context, id string) (*ordinals.InscriptionInfo, error) {
	return &ordinals.InscriptionInfo{ID: id}, nil
}
func (f *fakeOrdinals) GetMetadata(ctx context.Context, id string) ([]byte, error) { return nil, nil }
func (f *fakeOrdinals) EstimateFee(ctx context.Context, blocks int) (float64, error) {
	return 12, nil
}
func (f *fakeOrdinals) InscribeData(ctx context.Context, payload []byte, contentType string, feeRate *float64) (*ordinals.InscribeResult, error) {
	sat := f.satoshi
	return &ordinals.InscribeResult{InscriptionID: "insc-1", TxID: "tx-1", Satoshi: &sat, FeeRate: 10}, nil
}
func (f *fakeOrdinals) TransferInscription(ctx context.Context, inscriptionID, toAddress string) (*ordinals.TransferResult, error) {
	return &ordinals.TransferResult{TxID: "tx-transfer"}, nil
}

type failingOrdinals struct{ *fakeOrdinals }

func (f *failingOrdinals) InscribeData(ctx context.Context, payload []byte, contentType string, feeRate *float64) (*ordinals.InscribeResult, error) {
	return nil, assertErr{"inscription service unavailable"}
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }

func TestGetValidTransitionsReturnsDefensiveCopy(t *testing.T) {
	got := migration.GetValidTransitions(migration.Pending)
	require.Len(t, got, 1)
	got[0] = migration.Failed

	again := migration.GetValidTransitions(migration.Pending)
	assert.Equal(t, migration.Validating, again[0])
}

func TestCheckStateTransitionRejectsUnknownEdge(t *testing.T) {
	assert.NoError(t, migration.CheckStateTransition(migration.Pending, migration.Validating))
	assert.Error(t, migration.CheckStateTransition(migration.Completed, migration.InProgress))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, migration.IsTerminal(migration.Completed))
	assert.True(t, migration.IsTerminal(migration.RolledBack))
	assert.True(t, migration.IsTerminal(migration.Quarantined))
	assert.False(t, migration.IsTerminal(migration.InProgress))
}

func TestMigratePeerToWebVHCompletesAndCheckpoints(t *testing.T) {
	lm := lifecycle.NewManager(lifecycle.WithKeyStore(keystore.New()), lifecycle.WithStorage(storage.NewMemoryAdapter()))
	asset, err := lm.CreateAsset(context.Background(), sampleResources())
	require.NoError(t, err)

	mgr := migration.NewManager(lm)
	result, err := mgr.Migrate(context.Background(), asset, did.WebVH, migration.MigrateOptions{Publisher: "did:webvh:example.com"})
	require.NoError(t, err)
	assert.Equal(t, migration.Completed, result.FinalState)
	assert.Equal(t, did.WebVH, asset.CurrentLayer)
	assert.NotEmpty(t, result.CheckpointID)

	audited := mgr.Audit.For(asset.ID)
	require.Len(t, audited, 1)
	assert.Equal(t, migration.Completed, audited[0].FinalState)
}

func TestMigrateRollsBackAssetStateOnFailure(t *testing.T) {
	lm := lifecycle.NewManager(lifecycle.WithKeyStore(keystore.New()), lifecycle.WithOrdinals(&failingOrdinals{&fakeOrdinals{satoshi: 99}}))
	asset, err := lm.CreateAsset(context.Background(), sampleResources())
	require.NoError(t, err)
	originalLayer := asset.CurrentLayer

	mgr := migration.NewManager(lm)
	result, err := mgr.Migrate(context.Background(), asset, did.Btco, migration.MigrateOptions{})
	require.Error(t, err)
	assert.Equal(t, migration.RolledBack, result.FinalState)
	assert.Equal(t, originalLayer, asset.CurrentLayer)

	audited := mgr.Audit.For(asset.ID)
	require.Len(t, audited, 1)
	assert.Equal(t, migration.RolledBack, audited[0].FinalState)
	assert.NotEmpty(t, audited[0].Error)
}

func TestMigrateRejectsBackwardTransition(t *testing.T) {
	lm := lifecycle.NewManager(lifecycle.WithKeyStore(keystore.New()), lifecycle.WithOrdinals(&fakeOrdinals{satoshi: 1}))
	asset, err := lm.CreateAsset(context.Background(), sampleResources())
	require.NoError(t, err)
	require.NoError(t, lm.InscribeOnBitcoin(context.Background(), asset, nil))

	mgr := migration.NewManager(lm)
	_, err = mgr.Migrate(context.Background(), asset, did.WebVH, migration.MigrateOptions{})
	assert.Error(t, err)
}

func TestBatchMigrateStopsAtFirstFailureByDefault(t *testing.T) {
	lm := lifecycle.NewManager(lifecycle.WithKeyStore(keystore.New()), lifecycle.WithOrdinals(&failingOrdinals{&fakeOrdinals{satoshi: 1}}))
	a1, err := lm.CreateAsset(context.Background(), sampleResources())
	require.NoError(t, err)
	a2, err := lm.CreateAsset(context.Background(), sampleResources())
	require.NoError(t, err)

	mgr := migration.NewManager(lm)
	results := mgr.BatchMigrate(context.Background(), []migration.BatchMigrateTarget{
		{Asset: a1, Target: did.Btco},
		{Asset: a2, Target: did.Btco},
	}, false)
	assert.Len(t, results, 1)
	assert.Equal(t, migration.RolledBack, results[0].FinalState)
}

func TestBatchMigrateContinuesOnErrorWhenRequested(t *testing.T) {
	lm := lifecycle.NewManager(lifecycle.WithKeyStore(keystore.New()), lifecycle.WithOrdinals(&failingOrdinals{&fakeOrdinals{satoshi: 1}}))
	a1, err := lm.CreateAsset(context.Background(), sampleResources())
	require.NoError(t, err)
	a2, err := lm.CreateAsset(context.Background(), sampleResources())
	require.NoError(t, err)

	mgr := migration.NewManager(lm)
	results := mgr.BatchMigrate(context.Background(), []migration.BatchMigrateTarget{
		{Asset: a1, Target: did.Btco},
		{Asset: a2, Target: did.Btco},
	}, true)
	assert.Len(t, results, 2)
}

func TestCheckpointStoreRestoreReturnsSnapshot(t *testing.T) {
	store := migration.NewCheckpointStore()
	lm := lifecycle.NewManager(lifecycle.WithKeyStore(keystore.New()))
	asset, err := lm.CreateAsset(context.Background(), sampleResources())
	require.NoError(t, err)

	cp := store.Create(asset)
	asset.CurrentLayer = did.WebVH

	snapshot, err := store.Restore(cp.ID)
	require.NoError(t, err)
	assert.Equal(t, did.Peer, snapshot.CurrentLayer)
}

func TestAuditLoggerDeduplicatesBySignatureNotMigrationID(t *testing.T) {
	logger := migration.NewAuditLogger(storage.NewMemoryAdapter())
	rec := migration.AuditRecord{MigrationID: "m1", AssetID: "asset1", FinalState: migration.Completed}
	later := rec
	later.Timestamp = rec.Timestamp.Add(1)
	require.NoError(t, logger.Append(context.Background(), rec))
	require.NoError(t, logger.Append(context.Background(), later))

	records := logger.For("asset1")
	assert.Len(t, records, 2)
}
