package migration

import (
	"context"
	"time"

	"github.com/google/uuid"

	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/internal/errors"
	"go.originals.dev/sdk/internal/log"
	"go.originals.dev/sdk/lifecycle"
)

// Manager orchestrates migrations as an explicit, checkpointed pipeline on
// top of a lifecycle.Manager, which supplies the actual layer-transition
// handlers (PublishToWeb, InscribeOnBitcoin).
type Manager struct {
	Lifecycle   *lifecycle.Manager
	Checkpoints *CheckpointStore
	Audit       *AuditLogger
	Events      *lifecycle.EventEmitter
	Log         log.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLifecycle injects the lifecycle.Manager used to execute layer
// transitions.
func WithLifecycle(lm *lifecycle.Manager) Option { return func(m *Manager) { m.Lifecycle = lm } }

// WithAuditLogger injects the AuditLogger used to persist migration outcomes.
func WithAuditLogger(logger *AuditLogger) Option { return func(m *Manager) { m.Audit = logger } }

// WithEvents injects a shared EventEmitter, so migration events
// (migration:started, migration:completed, migration:failed) and lifecycle
// events observe the same bus.
func WithEvents(events *lifecycle.EventEmitter) Option { return func(m *Manager) { m.Events = events } }

// WithLogger injects a structured logger; defaults to a discard logger.
func WithLogger(logger log.Logger) Option { return func(m *Manager) { m.Log = logger } }

// NewManager constructs a Manager. lm must not be nil.
func NewManager(lm *lifecycle.Manager, opts ...Option) *Manager {
	m := &Manager{
		Lifecycle:   lm,
		Checkpoints: NewCheckpointStore(),
		Audit:       NewAuditLogger(nil),
		Events:      lifecycle.NewEventEmitter(),
		Log:         log.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MigrateOptions carries the parameters a layer-specific handler needs.
type MigrateOptions struct {
	// Publisher is required when Target is webvh: either a did:webvh:*
	// string or a credential.ExternalSigner.
	Publisher interface{}
	// FeeRate is consulted when Target is btco; nil defers to the
	// lifecycle manager's fee resolution order.
	FeeRate *float64
}

// Result is the outcome of a single migration run.
type Result struct {
	MigrationID  string
	AssetID      string
	From         did.Layer
	To           did.Layer
	FinalState   State
	CheckpointID string
	Cost         *lifecycle.CostEstimate
	Err          error
}

// Migrate drives asset through the full migration pipeline: validate,
// checkpoint, execute, complete or roll back.
func (m *Manager) Migrate(ctx context.Context, asset *lifecycle.OriginalsAsset, target did.Layer, opts MigrateOptions) (*Result, error) {
	migrationID := "migration-" + uuid.NewString()
	from := asset.CurrentLayer
	res := &Result{MigrationID: migrationID, AssetID: asset.ID, From: from, To: target}

	state := Pending
	m.Events.Emit("migration:started", map[string]interface{}{"migrationId": migrationID, "assetId": asset.ID, "from": from, "to": target})

	advance := func(next State) error {
		if err := CheckStateTransition(state, next); err != nil {
			return err
		}
		state = next
		return nil
	}

	// Validate.
	if err := advance(Validating); err != nil {
		return m.fail(ctx, res, state, err, RolledBack)
	}
	if err := m.Lifecycle.ValidateMigration(asset, target); err != nil {
		return m.fail(ctx, res, state, err, RolledBack)
	}
	cost, err := m.Lifecycle.EstimateCost(ctx, asset, target, opts.FeeRate)
	if err != nil {
		return m.fail(ctx, res, state, err, RolledBack)
	}
	res.Cost = cost

	// Checkpoint.
	if err := advance(Checkpointed); err != nil {
		return m.fail(ctx, res, state, err, RolledBack)
	}
	checkpoint := m.Checkpoints.Create(asset)
	res.CheckpointID = checkpoint.ID

	// Execute.
	if err := advance(InProgress); err != nil {
		return m.fail(ctx, res, state, err, RolledBack)
	}
	if err := m.execute(ctx, asset, from, target, opts); err != nil {
		finalState := RolledBack
		if rbErr := m.rollback(asset, checkpoint.ID); rbErr != nil {
			finalState = Quarantined
		}
		return m.fail(ctx, res, state, err, finalState)
	}

	// Complete.
	if err := advance(Completed); err != nil {
		return m.fail(ctx, res, state, err, RolledBack)
	}
	res.FinalState = Completed
	m.Checkpoints.ScheduleDeletion(checkpoint.ID)

	m.Audit.Append(ctx, AuditRecord{
		MigrationID: migrationID, AssetID: asset.ID, From: Pending, To: Completed,
		FinalState: Completed, Timestamp: time.Now().UTC(),
	})
	m.Events.Emit("migration:completed", res)
	return res, nil
}

// execute dispatches to the lifecycle handler appropriate for from->target.
func (m *Manager) execute(ctx context.Context, asset *lifecycle.OriginalsAsset, from, target did.Layer, opts MigrateOptions) error {
	switch {
	case from == did.Peer && target == did.WebVH:
		return m.Lifecycle.PublishToWeb(ctx, asset, opts.Publisher)
	case target == did.Btco:
		return m.Lifecycle.InscribeOnBitcoin(ctx, asset, opts.FeeRate)
	default:
		return errors.InvalidTransitionErr("no migration handler for %q -> %q", from, target)
	}
}

// rollback restores the checkpoint's snapshot into asset in place. It fails
// if the checkpoint has already been deleted or expired out of the store,
// which leaves asset in an indeterminate state the caller must quarantine
// rather than claim as rolled back. Chain-layer side effects (an inscription
// that already landed on Bitcoin) cannot be undone and are left to the
// resolver's reconciliation; only the in-memory view is restored.
func (m *Manager) rollback(asset *lifecycle.OriginalsAsset, checkpointID string) error {
	snapshot, err := m.Checkpoints.Restore(checkpointID)
	if err != nil {
		return err
	}
	asset.CurrentLayer = snapshot.CurrentLayer
	asset.Resources = snapshot.Resources
	asset.Credentials = snapshot.Credentials
	asset.Bindings = snapshot.Bindings
	asset.Provenance = snapshot.Provenance
	return nil
}

// fail finalizes a failed migration: marks Failed, records the outcome the
// caller determined for rollback (already attempted for execute failures),
// writes the terminal audit record, and emits migration:failed.
func (m *Manager) fail(ctx context.Context, res *Result, state State, cause error, finalState State) (*Result, error) {
	res.Err = cause
	if err := CheckStateTransition(Failed, finalState); err != nil {
		finalState = Quarantined
	}
	res.FinalState = finalState

	m.Audit.Append(ctx, AuditRecord{
		MigrationID: res.MigrationID, AssetID: res.AssetID, From: Pending, To: Failed,
		FinalState: finalState, Timestamp: time.Now().UTC(), Error: cause.Error(),
	})
	m.Events.Emit("migration:failed", map[string]interface{}{"migrationId": res.MigrationID, "state": state, "error": cause.Error()})
	return res, cause
}

// BatchMigrateTarget pairs an asset with its migration destination and
// per-item options.
type BatchMigrateTarget struct {
	Asset   *lifecycle.OriginalsAsset
	Target  did.Layer
	Options MigrateOptions
}

// BatchMigrate processes targets sequentially. With continueOnError=false
// (the default) the batch stops at the first failure.
func (m *Manager) BatchMigrate(ctx context.Context, targets []BatchMigrateTarget, continueOnError bool) []*Result {
	results := make([]*Result, 0, len(targets))
	for _, t := range targets {
		res, err := m.Migrate(ctx, t.Asset, t.Target, t.Options)
		results = append(results, res)
		if err != nil && !continueOnError {
			break
		}
	}
	return results
}
