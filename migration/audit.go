package migration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.originals.dev/sdk/internal/errors"
	"go.originals.dev/sdk/storage"
)

// AuditRecord is one append-only entry in a DID's migration history.
type AuditRecord struct {
	MigrationID string    `json:"migrationId"`
	AssetID     string    `json:"assetId"`
	From        State     `json:"from"`
	To          State     `json:"to"`
	FinalState  State     `json:"finalState"`
	Timestamp   time.Time `json:"timestamp"`
	Error       string    `json:"error,omitempty"`
	Signature   string    `json:"signature"`
}

// canonicalHash computes a SHA-256 hash over the record's canonical JSON
// encoding, omitting the signature field itself. This stands in for a future
// Ed25519-signed audit trail; the hash already gives tamper-evidence for the
// append-only log even before a real signing key is wired in.
func canonicalHash(rec AuditRecord) (string, error) {
	rec.Signature = ""
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", errors.EncodingErr("canonicalizing audit record: %v", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// AuditLogger persists migration outcomes as an append-only per-DID trail,
// deduplicating by signature (falling back to migrationId-timestamp-
// finalState when a record has no signature): a record whose key was
// already appended is dropped.
type AuditLogger struct {
	mu      sync.Mutex
	storage storage.Adapter
	seen    map[string]bool
	records map[string][]AuditRecord // assetId -> records
}

// NewAuditLogger constructs an AuditLogger backed by adapter. adapter may be
// nil, in which case records are kept in memory only and never persisted.
func NewAuditLogger(adapter storage.Adapter) *AuditLogger {
	return &AuditLogger{
		storage: adapter,
		seen:    make(map[string]bool),
		records: make(map[string][]AuditRecord),
	}
}

// Append records a migration outcome. The record's signature is computed
// before the dedup check so that two logically distinct records (different
// timestamps, different errors) are never collapsed.
func (a *AuditLogger) Append(ctx context.Context, rec AuditRecord) error {
	sig, err := canonicalHash(rec)
	if err != nil {
		return err
	}
	rec.Signature = sig

	dedupKey := sig
	if dedupKey == "" {
		dedupKey = fmt.Sprintf("%s-%d-%s", rec.MigrationID, rec.Timestamp.UnixNano(), rec.FinalState)
	}
	a.mu.Lock()
	if a.seen[dedupKey] {
		a.mu.Unlock()
		return nil
	}
	a.seen[dedupKey] = true
	a.records[rec.AssetID] = append(a.records[rec.AssetID], rec)
	a.mu.Unlock()

	if a.storage == nil {
		return nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return errors.EncodingErr("marshaling audit record: %v", err)
	}
	path := fmt.Sprintf("audit/migrations/%s/%s-%s.json", rec.MigrationID, rec.Timestamp.UTC().Format(time.RFC3339Nano), rec.FinalState)
	// Audit writes that fail do not undo in-memory state: the record already
	// landed in a.records above.
	if err := a.storage.Put(ctx, path, raw, storage.PutOptions{ContentType: "application/json"}); err != nil {
		return errors.ExternalErr("persisting audit record for migration %s: %v", rec.MigrationID, err)
	}
	return nil
}

// For returns a copy of the audit trail recorded for assetID.
func (a *AuditLogger) For(assetID string) []AuditRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AuditRecord, len(a.records[assetID]))
	copy(out, a.records[assetID])
	return out
}
