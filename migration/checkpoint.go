package migration

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"go.originals.dev/sdk/internal/errors"
	"go.originals.dev/sdk/lifecycle"
)

// checkpointTTL is how long a checkpoint is retained after a migration
// completes successfully; deletion is scheduled at completion and runs once
// this period has passed.
const checkpointTTL = 24 * time.Hour

// Checkpoint snapshots an asset's pre-migration view so a failed migration
// can be restored.
type Checkpoint struct {
	ID        string
	AssetID   string
	Snapshot  *lifecycle.OriginalsAsset
	CreatedAt time.Time
}

// CheckpointStore holds in-flight and recently-completed checkpoints.
type CheckpointStore struct {
	mu    sync.Mutex
	byID  map[string]*Checkpoint
	timer map[string]*time.Timer
}

// NewCheckpointStore constructs an empty CheckpointStore.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{
		byID:  make(map[string]*Checkpoint),
		timer: make(map[string]*time.Timer),
	}
}

// Create snapshots asset and returns the new checkpoint's id.
func (s *CheckpointStore) Create(asset *lifecycle.OriginalsAsset) *Checkpoint {
	cp := &Checkpoint{
		ID:        "checkpoint-" + uuid.NewString(),
		AssetID:   asset.ID,
		Snapshot:  asset.Clone(),
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.byID[cp.ID] = cp
	s.mu.Unlock()
	return cp
}

// Get retrieves a checkpoint by id.
func (s *CheckpointStore) Get(id string) (*Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, ok := s.byID[id]
	if !ok {
		return nil, errors.NotFoundErr("no checkpoint %q", id)
	}
	return cp, nil
}

// Restore returns the snapshot recorded under id, leaving the checkpoint in
// place (ScheduleDeletion controls its eventual removal).
func (s *CheckpointStore) Restore(id string) (*lifecycle.OriginalsAsset, error) {
	cp, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return cp.Snapshot, nil
}

// Delete removes a checkpoint immediately.
func (s *CheckpointStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	if t, ok := s.timer[id]; ok {
		t.Stop()
		delete(s.timer, id)
	}
}

// ScheduleDeletion arranges for checkpoint id to be removed after the
// standard retention window. Used once a migration completes successfully,
// since rollback is no longer meaningful past that point.
func (s *CheckpointStore) ScheduleDeletion(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return
	}
	s.timer[id] = time.AfterFunc(checkpointTTL, func() {
		s.Delete(id)
	})
}
