package lifecycle

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/did/btco"
	"go.originals.dev/sdk/internal/errors"
)

// BatchOptions configures a batch operation's concurrency and retry policy.
type BatchOptions struct {
	ContinueOnError bool
	MaxConcurrent   int
	RetryCount      int
	RetryDelay      time.Duration
	TimeoutMs       int
	ValidateFirst   bool
}

func (o BatchOptions) withDefaults() BatchOptions {
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 1
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 1000 * time.Millisecond
	}
	if o.TimeoutMs <= 0 {
		o.TimeoutMs = 30_000
	}
	return o
}

// BatchSuccess is one successful item outcome.
type BatchSuccess struct {
	Index    int
	Result   interface{}
	Duration time.Duration
}

// BatchFailure is one failed item outcome.
type BatchFailure struct {
	Index         int
	Error         error
	Duration      time.Duration
	RetryAttempts int
}

// BatchResult aggregates the outcome of a batch operation.
type BatchResult struct {
	Successful     []BatchSuccess
	Failed         []BatchFailure
	TotalProcessed int
	TotalDuration  time.Duration
	BatchID        string
	StartedAt      time.Time
	CompletedAt    time.Time
}

type batchItemResult struct {
	index    int
	result   interface{}
	err      error
	duration time.Duration
	attempts int
}

// runBatch chunks n items into groups of opts.MaxConcurrent, awaiting each
// group before starting the next so that !ContinueOnError can stop the
// batch cleanly between groups. Each item is retried up to RetryCount times
// with exponential backoff (RetryDelay * 2^attempt) and bounded by
// TimeoutMs.
func (m *Manager) runBatch(ctx context.Context, n int, opts BatchOptions, fn func(ctx context.Context, index int) (interface{}, error)) *BatchResult {
	opts = opts.withDefaults()
	start := time.Now().UTC()
	batchID := "batch-" + uuid.NewString()
	m.Events.Emit("batch:started", map[string]interface{}{"batchId": batchID, "totalItems": n})

	result := &BatchResult{BatchID: batchID, StartedAt: start}
	stop := false

	for groupStart := 0; groupStart < n && !stop; groupStart += opts.MaxConcurrent {
		groupEnd := groupStart + opts.MaxConcurrent
		if groupEnd > n {
			groupEnd = n
		}
		outcomes := make([]batchItemResult, groupEnd-groupStart)
		done := make(chan int, len(outcomes))

		for i := groupStart; i < groupEnd; i++ {
			go func(idx int) {
				outcomes[idx-groupStart] = m.runBatchItem(ctx, idx, opts, fn)
				done <- idx
			}(i)
		}
		for range outcomes {
			<-done
		}

		for _, o := range outcomes {
			result.TotalProcessed++
			if o.err != nil {
				result.Failed = append(result.Failed, BatchFailure{Index: o.index, Error: o.err, Duration: o.duration, RetryAttempts: o.attempts})
				if !opts.ContinueOnError {
					stop = true
				}
			} else {
				result.Successful = append(result.Successful, BatchSuccess{Index: o.index, Result: o.result, Duration: o.duration})
			}
		}
	}

	result.CompletedAt = time.Now().UTC()
	result.TotalDuration = result.CompletedAt.Sub(start)

	if len(result.Failed) > 0 {
		m.Events.Emit("batch:failed", map[string]interface{}{"batchId": batchID, "failed": result.Failed})
	}
	m.Events.Emit("batch:completed", result)
	return result
}

func (m *Manager) runBatchItem(ctx context.Context, index int, opts BatchOptions, fn func(ctx context.Context, index int) (interface{}, error)) batchItemResult {
	itemStart := time.Now()
	var lastErr error
	for attempt := 0; attempt <= opts.RetryCount; attempt++ {
		itemCtx, cancel := context.WithTimeout(ctx, time.Duration(opts.TimeoutMs)*time.Millisecond)
		res, err := fn(itemCtx, index)
		cancel()
		if err == nil {
			return batchItemResult{index: index, result: res, duration: time.Since(itemStart), attempts: attempt}
		}
		lastErr = err
		if attempt < opts.RetryCount {
			backoff := opts.RetryDelay * time.Duration(1<<uint(attempt))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = opts.RetryCount
			}
		}
	}
	return batchItemResult{index: index, err: lastErr, duration: time.Since(itemStart), attempts: opts.RetryCount}
}

// BatchCreateAssets creates one asset per resource group.
func (m *Manager) BatchCreateAssets(ctx context.Context, groups [][]ResourceInput, opts BatchOptions) *BatchResult {
	return m.runBatch(ctx, len(groups), opts, func(ctx context.Context, i int) (interface{}, error) {
		return m.CreateAsset(ctx, groups[i])
	})
}

// PublishTarget pairs an asset with its publisher for a batch publish call.
type PublishTarget struct {
	Asset     *OriginalsAsset
	Publisher interface{}
}

// BatchPublishToWeb publishes a set of assets to their respective
// publishers.
func (m *Manager) BatchPublishToWeb(ctx context.Context, targets []PublishTarget, opts BatchOptions) *BatchResult {
	return m.runBatch(ctx, len(targets), opts, func(ctx context.Context, i int) (interface{}, error) {
		t := targets[i]
		if opts.ValidateFirst {
			if err := m.ValidateMigration(t.Asset, did.WebVH); err != nil {
				return nil, err
			}
		}
		if err := m.PublishToWeb(ctx, t.Asset, t.Publisher); err != nil {
			return nil, err
		}
		return t.Asset, nil
	})
}

// BatchInscribeOnBitcoin inscribes each asset independently, one Bitcoin
// transaction per asset.
func (m *Manager) BatchInscribeOnBitcoin(ctx context.Context, assets []*OriginalsAsset, feeRate *float64, opts BatchOptions) *BatchResult {
	return m.runBatch(ctx, len(assets), opts, func(ctx context.Context, i int) (interface{}, error) {
		asset := assets[i]
		if opts.ValidateFirst {
			if err := m.ValidateMigration(asset, did.Btco); err != nil {
				return nil, err
			}
		}
		if err := m.InscribeOnBitcoin(ctx, asset, feeRate); err != nil {
			return nil, err
		}
		return asset, nil
	})
}

// TransferTarget pairs an asset with its transfer destination for a batch
// transfer call.
type TransferTarget struct {
	Asset    *OriginalsAsset
	NewOwner string
}

// BatchTransferOwnership transfers ownership of a set of btco-layer assets.
func (m *Manager) BatchTransferOwnership(ctx context.Context, targets []TransferTarget, opts BatchOptions) *BatchResult {
	return m.runBatch(ctx, len(targets), opts, func(ctx context.Context, i int) (interface{}, error) {
		t := targets[i]
		if err := m.TransferOwnership(ctx, t.Asset, t.NewOwner); err != nil {
			return nil, err
		}
		return t.Asset, nil
	})
}

// combinedManifest is the single inscription payload for a batch of assets
// inscribed in one Bitcoin transaction.
type combinedManifest struct {
	BatchID   string     `json:"batchId"`
	Assets    []manifest `json:"assets"`
	Timestamp time.Time  `json:"timestamp"`
}

// BatchInscribeOnBitcoinSingleTransaction inscribes all assets' manifests
// in a single combined inscription, splitting the resulting fee across
// assets proportionally to each asset's manifest byte size plus the byte
// size of its resources' content, and reports
// cost savings against a per-asset inscription baseline.
func (m *Manager) BatchInscribeOnBitcoinSingleTransaction(ctx context.Context, assets []*OriginalsAsset, feeRate *float64) (*BatchResult, error) {
	if len(assets) == 0 {
		return nil, errors.InputErr("batch inscription requires at least one asset")
	}
	if m.Ordinals == nil {
		return nil, errors.ExternalErr("batch inscription requires a configured ordinals provider")
	}
	for _, a := range assets {
		if err := m.ValidateMigration(a, did.Btco); err != nil {
			return nil, err
		}
	}

	batchID := "batch-" + uuid.NewString()
	start := time.Now().UTC()
	m.Events.Emit("batch:started", map[string]interface{}{"batchId": batchID, "totalItems": len(assets)})

	manifests := make([]manifest, len(assets))
	sizes := make([]int, len(assets))
	weights := make([]int, len(assets))
	totalSize, totalWeight := 0, 0
	for i, a := range assets {
		manifests[i] = buildManifest(a)
		raw, err := json.Marshal(manifests[i])
		if err != nil {
			return nil, errors.EncodingErr("marshaling manifest for asset %s: %v", a.ID, err)
		}
		sizes[i] = len(raw)
		totalSize += sizes[i]
		weights[i] = sizes[i]
		for _, r := range a.Resources {
			weights[i] += len(r.Content)
		}
		totalWeight += weights[i]
	}

	combined := combinedManifest{BatchID: batchID, Assets: manifests, Timestamp: start}
	payload, err := json.Marshal(combined)
	if err != nil {
		return nil, errors.EncodingErr("marshaling combined manifest: %v", err)
	}

	inscribeResult, err := m.Ordinals.InscribeData(ctx, payload, "application/json", feeRate)
	if err != nil {
		m.Events.Emit("batch:failed", map[string]interface{}{"batchId": batchID, "error": err.Error()})
		return nil, err
	}

	rate := 0.0
	if feeRate != nil {
		rate = *feeRate
	} else {
		rate = inscribeResult.FeeRate
	}
	commitVBytes := 200.0
	revealVBytes := 200.0 + 122.0 + float64(totalSize)
	totalFee := uint64((commitVBytes + revealVBytes) * rate)

	baselineTotal := uint64(0)
	result := &BatchResult{BatchID: batchID, StartedAt: start}
	for i, a := range assets {
		share := 0.0
		if totalWeight > 0 {
			share = float64(weights[i]) / float64(totalWeight)
		}
		feePaid := uint64(float64(totalFee) * share)

		unlock := m.lockAsset(a.ID)
		fromLayer := a.CurrentLayer
		a.CurrentLayer = did.Btco
		var btcoDID string
		if inscribeResult.Satoshi != nil {
			btcoDID, err = btco.DIDForSatoshi(*inscribeResult.Satoshi, m.Network)
			if err != nil {
				unlock()
				return nil, err
			}
		} else {
			btcoDID = "did:btco:" + inscribeResult.InscriptionID
		}
		a.Bindings[did.Btco] = btcoDID
		a.Provenance.Migrations = append(a.Provenance.Migrations, MigrationRecord{
			From: fromLayer, To: did.Btco, Timestamp: time.Now().UTC(),
			TransactionID: inscribeResult.TxID, InscriptionID: inscribeResult.InscriptionID,
			Satoshi: inscribeResult.Satoshi, CommitTxID: inscribeResult.CommitTxID,
			RevealTxID: inscribeResult.RevealTxID, FeeRate: rate,
			BatchID: batchID, BatchIndex: i, FeePaid: &feePaid,
		})

		baselineTotal += uint64((200.0 + 122.0 + float64(sizes[i])) * rate)
		result.Successful = append(result.Successful, BatchSuccess{Index: i, Result: a})
		result.TotalProcessed++
		unlock()
	}

	result.CompletedAt = time.Now().UTC()
	result.TotalDuration = result.CompletedAt.Sub(start)

	savings := int64(baselineTotal) - int64(totalFee)
	m.Events.Emit("batch:completed", map[string]interface{}{
		"batchId": batchID, "result": result, "batchInscription": true,
		"costSavings": map[string]interface{}{
			"baselineSats": baselineTotal, "actualSats": totalFee, "savedSats": savings,
		},
	})
	return result, nil
}
