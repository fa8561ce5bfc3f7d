package models

import "github.com/zeusync/replica/internal/core/variant"

// EntityID is a stable integer identity, unique across a session and never
// reused while the entity exists.
type EntityID int64

// Priority is the ordinal update-priority hint an entity may expose. Entities
// at PriorityCritical or above always replicate as full states, never deltas.
type Priority uint8

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// Priority string representation
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Replicable is the narrow handle game logic exposes for an entity whose state
// this engine replicates. The engine never constructs or destroys the
// underlying entity; it only reads and writes the serialized field form.
type Replicable interface {
	ID() EntityID
	Type() string
	Serialize() (map[string]variant.Value, error)
	Deserialize(fields map[string]variant.Value) error
}

// Prioritized is optionally implemented by a Replicable that wants to hint its
// update priority. Entities without it replicate at PriorityNormal.
type Prioritized interface {
	Priority() Priority
}

// Positioned is optionally implemented by a Replicable whose position should
// feed spatial interest policies.
type Positioned interface {
	Position() (x, y, z float64)
}
