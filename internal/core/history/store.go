package history

import (
	"sort"

	"github.com/zeusync/replica/internal/core/models"
)

const defaultCapacity = 64

// Store keeps a bounded time series of state snapshots per entity. Snapshots
// are the diff baselines for outbound deltas and the lookup source for
// time-indexed queries such as lag compensation. Each series is a fixed
// capacity ring; once full, the oldest snapshot is evicted first.
//
// Returned snapshots are owned by the store. Callers that want to mutate one
// must clone it first.
type Store struct {
	capacity int
	series   map[models.EntityID]*ring
	stats    Stats
}

// Stats carries usage counters for the store.
type Stats struct {
	Recorded  uint64 // Snapshots recorded since creation
	Evicted   uint64 // Snapshots dropped by capacity eviction
	Entities  int    // Entities currently tracked
	Snapshots int    // Snapshots currently retained across all entities
}

// NewStore creates a store retaining up to capacity snapshots per entity.
// A capacity below one falls back to the default.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Store{
		capacity: capacity,
		series:   make(map[models.EntityID]*ring),
	}
}

// Capacity returns the per-entity snapshot limit.
func (s *Store) Capacity() int {
	return s.capacity
}

// Record deep-clones the state and appends it to the entity's series, evicting
// the oldest snapshot when the series is full. Cloning up front means later
// in-place mutation of the live entity's fields can never corrupt a recorded
// baseline. A snapshot that is not newer than the newest retained one replaces
// it instead of appending, keeping the series strictly increasing in time.
func (s *Store) Record(state models.EntityState) {
	r, ok := s.series[state.ID]
	if !ok {
		r = newRing(s.capacity)
		s.series[state.ID] = r
	}
	evicted := r.push(state.Clone())
	s.stats.Recorded++
	if evicted {
		s.stats.Evicted++
	}
}

// LastState returns the newest retained snapshot for the entity.
func (s *Store) LastState(id models.EntityID) (models.EntityState, bool) {
	r, ok := s.series[id]
	if !ok || r.count == 0 {
		return models.EntityState{}, false
	}
	return r.at(r.count - 1), true
}

// StateAtOrBefore returns the latest snapshot with a timestamp at or before
// the query. It reports false when the entity is unknown or the oldest
// retained snapshot is already newer than the query; a future state is never
// silently substituted.
func (s *Store) StateAtOrBefore(id models.EntityID, timestamp int64) (models.EntityState, bool) {
	r, ok := s.series[id]
	if !ok || r.count == 0 {
		return models.EntityState{}, false
	}
	// First index whose snapshot is strictly newer than the query.
	idx := sort.Search(r.count, func(i int) bool {
		return r.at(i).Timestamp > timestamp
	})
	if idx == 0 {
		return models.EntityState{}, false
	}
	return r.at(idx - 1), true
}

// Len returns the number of snapshots retained for the entity.
func (s *Store) Len(id models.EntityID) int {
	r, ok := s.series[id]
	if !ok {
		return 0
	}
	return r.count
}

// Entities returns the ids currently tracked by the store.
func (s *Store) Entities() []models.EntityID {
	ids := make([]models.EntityID, 0, len(s.series))
	for id := range s.series {
		ids = append(ids, id)
	}
	return ids
}

// Clear drops the entity's series.
func (s *Store) Clear(id models.EntityID) {
	delete(s.series, id)
}

// ClearAll drops every series.
func (s *Store) ClearAll() {
	s.series = make(map[models.EntityID]*ring)
}

// Stats returns a snapshot of the store's usage counters.
func (s *Store) Stats() Stats {
	stats := s.stats
	stats.Entities = len(s.series)
	for _, r := range s.series {
		stats.Snapshots += r.count
	}
	return stats
}

// ring is a fixed-capacity circular buffer of snapshots in time order.
type ring struct {
	buf   []models.EntityState
	head  int // index of the oldest snapshot
	count int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]models.EntityState, capacity)}
}

// at returns the i-th snapshot in time order, 0 being the oldest.
func (r *ring) at(i int) models.EntityState {
	return r.buf[(r.head+i)%len(r.buf)]
}

// push appends a snapshot, reporting whether an old one was evicted. A state
// not newer than the current newest overwrites it in place.
func (r *ring) push(state models.EntityState) bool {
	if r.count > 0 && state.Timestamp <= r.at(r.count-1).Timestamp {
		r.buf[(r.head+r.count-1)%len(r.buf)] = state
		return false
	}
	if r.count < len(r.buf) {
		r.buf[(r.head+r.count)%len(r.buf)] = state
		r.count++
		return false
	}
	r.buf[r.head] = state
	r.head = (r.head + 1) % len(r.buf)
	return true
}
