package models

import (
	"github.com/zeusync/replica/internal/core/diff"
	"github.com/zeusync/replica/internal/core/variant"
)

// EntityState is a snapshot of one replicable entity at one point in time.
// Within one entity's history, timestamps are strictly increasing in insertion
// order.
type EntityState struct {
	ID        EntityID                 `json:"id"`
	Type      string                   `json:"entityType"`
	Fields    map[string]variant.Value `json:"fields"`
	Timestamp int64                    `json:"timestamp"`
	Priority  *Priority                `json:"priority,omitempty"`
}

// Clone returns a deep copy of the state sharing no mutable structure with
// the source.
func (s EntityState) Clone() EntityState {
	cloned := s
	cloned.Fields = variant.CloneFields(s.Fields)
	if s.Priority != nil {
		p := *s.Priority
		cloned.Priority = &p
	}
	return cloned
}

// DeltaUpdate transforms one EntityState into the next. The receiver must hold
// a baseline with exactly BaseTimestamp before applying. Changes is never
// empty; "nothing changed" is expressed by sending no delta at all.
type DeltaUpdate struct {
	ID            EntityID     `json:"id"`
	Changes       diff.Changes `json:"changes"`
	Timestamp     int64        `json:"timestamp"`
	BaseTimestamp int64        `json:"baseTimestamp"`
}

// StateBatch is the unit of transmission for one tick. An entity id appears in
// at most one of FullStates, Deltas and Destroyed within a single batch.
type StateBatch struct {
	Tick       uint64        `json:"tick"`
	Timestamp  int64         `json:"timestamp"`
	FullStates []EntityState `json:"fullStates"`
	Deltas     []DeltaUpdate `json:"deltas"`
	Destroyed  []EntityID    `json:"destroyed"`
}

// IsEmpty reports whether the batch carries no state at all.
func (b StateBatch) IsEmpty() bool {
	return len(b.FullStates) == 0 && len(b.Deltas) == 0 && len(b.Destroyed) == 0
}
