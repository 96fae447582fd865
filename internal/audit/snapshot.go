package audit

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultSnapshotTTL        = 2 * time.Minute
	defaultSnapshotMaxEntries = 4096
)

// Snapshot is the pre-mutation state of one entity instance.
type Snapshot struct {
	EntityType string
	ID         string
	Fields     Fields
	CapturedAt time.Time
}

// SnapshotStore keeps before-images between the two hook points.
type SnapshotStore interface {
	Capture(entityType, id string, fields Fields)
	Consume(entityType, id string) (Snapshot, bool)
	Len() int
}

// MemorySnapshotStore is a bounded in-process store. Entries that are never
// consumed (rolled back transactions) expire after the TTL.
//
// Two concurrent mutations of the same instance share one key, so the second
// capture overwrites the first and one of them diffs against the other's
// before-image. That race is accepted.
type MemorySnapshotStore struct {
	registry *Registry
	cache    *lru.LRU[string, Snapshot]
	now      func() time.Time
}

// NewMemorySnapshotStore constructs the store. Non-positive limits fall back to defaults.
func NewMemorySnapshotStore(registry *Registry, maxEntries int, ttl time.Duration) *MemorySnapshotStore {
	if maxEntries <= 0 {
		maxEntries = defaultSnapshotMaxEntries
	}
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	if registry == nil {
		registry = DefaultRegistry()
	}

	return &MemorySnapshotStore{
		registry: registry,
		cache:    lru.NewLRU[string, Snapshot](maxEntries, nil, ttl),
		now:      time.Now,
	}
}

func snapshotKey(entityType, id string) string {
	return entityType + ":" + id
}

// Capture stores a copy of fields. Unaudited types and unsaved instances are ignored.
func (s *MemorySnapshotStore) Capture(entityType, id string, fields Fields) {
	if id == "" || !s.registry.Auditable(entityType) {
		return
	}
	s.cache.Add(snapshotKey(entityType, id), Snapshot{
		EntityType: entityType,
		ID:         id,
		Fields:     fields.Clone(),
		CapturedAt: s.now(),
	})
}

// Consume removes and returns the snapshot for the instance.
func (s *MemorySnapshotStore) Consume(entityType, id string) (Snapshot, bool) {
	if id == "" {
		return Snapshot{}, false
	}
	key := snapshotKey(entityType, id)
	snap, ok := s.cache.Get(key)
	if !ok {
		return Snapshot{}, false
	}
	s.cache.Remove(key)
	return snap, true
}

// Len reports the number of in-flight snapshots.
func (s *MemorySnapshotStore) Len() int {
	return s.cache.Len()
}
