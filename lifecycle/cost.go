package lifecycle

import (
	"context"
	"encoding/json"

	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/internal/errors"
)

// dust is the minimum output value, in satoshis, below which Bitcoin nodes
// refuse to relay a transaction.
const dust = 546

// defaultFeeRate is used when no explicit rate, fee oracle, or ordinals
// provider estimate is available.
const defaultFeeRate = 10.0

// CostBreakdown itemizes the components summed into CostEstimate.TotalSats.
type CostBreakdown struct {
	CommitVBytes float64
	RevealVBytes float64
	ManifestSize int
	DustValue    uint64
}

// CostEstimate is the result of EstimateCost.
type CostEstimate struct {
	TotalSats  uint64
	FeeRate    float64
	Confidence string // "high", "medium", "low"
	Source     string // "explicit", "fee-oracle", "ordinals-provider", "default"; "n/a" for non-btco targets
	Breakdown  CostBreakdown
}

// EstimateCost computes the cost of migrating asset to targetLayer. Moving
// to webvh (from any layer) or staying at peer is free; only btco
// inscription carries an on-chain cost.
func (m *Manager) EstimateCost(ctx context.Context, asset *OriginalsAsset, targetLayer did.Layer, feeRate *float64) (*CostEstimate, error) {
	if targetLayer != did.Btco {
		return &CostEstimate{TotalSats: 0, Confidence: "high", Source: "n/a"}, nil
	}

	man := buildManifest(asset)
	raw, err := json.Marshal(man)
	if err != nil {
		return nil, errors.EncodingErr("marshaling manifest for cost estimate: %v", err)
	}
	manifestSize := len(raw)

	rate, source, confidence := m.resolveFeeRate(ctx, feeRate)

	commitVBytes := 200.0
	revealVBytes := 200.0 + 122.0 + float64(manifestSize)
	total := uint64((commitVBytes+revealVBytes)*rate) + dust

	return &CostEstimate{
		TotalSats:  total,
		FeeRate:    rate,
		Confidence: confidence,
		Source:     source,
		Breakdown: CostBreakdown{
			CommitVBytes: commitVBytes,
			RevealVBytes: revealVBytes,
			ManifestSize: manifestSize,
			DustValue:    dust,
		},
	}, nil
}

func (m *Manager) resolveFeeRate(ctx context.Context, explicit *float64) (float64, string, string) {
	if explicit != nil {
		return *explicit, "explicit", "medium"
	}
	if m.FeeOracle != nil {
		if rate, err := m.FeeOracle(ctx); err == nil {
			return rate, "fee-oracle", "high"
		}
	}
	if m.Ordinals != nil {
		if rate, err := m.Ordinals.EstimateFee(ctx, 6); err == nil && rate > 0 {
			return rate, "ordinals-provider", "medium"
		}
	}
	return defaultFeeRate, "default", "low"
}
