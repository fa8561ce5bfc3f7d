package interest

import "github.com/zeusync/replica/internal/core/models"

// Level is the ordinal relevance score between an observer and an entity. An
// entity with LevelNone for an observer is excluded from that observer's
// batches entirely.
type Level uint8

const (
	LevelNone Level = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

// Level string representation
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Policy decides which entities are relevant to an observer and how relevant
// they are. Implementations maintain incremental per-entity bookkeeping; the
// replication manager feeds them Track, UpdatePosition and Remove calls as
// entities come and go. All implementations must support O(1) removal and
// incremental updates without a full rebuild.
//
// An entity is always LevelCritical to itself.
type Policy interface {
	// Track registers an entity with the policy. Spatial policies yield
	// LevelNone for tracked entities until a position is known.
	Track(id models.EntityID)

	// UpdatePosition records the entity's last-known position. Tracking is
	// implied; Track does not have to be called first.
	UpdatePosition(id models.EntityID, x, y, z float64)

	// Remove drops all bookkeeping for the entity.
	Remove(id models.EntityID)

	// InterestLevel returns the observer's interest in the candidate.
	InterestLevel(observer, candidate models.EntityID) Level

	// InterestSet returns every tracked entity with a level above LevelNone
	// for the observer, keyed by id.
	InterestSet(observer models.EntityID) map[models.EntityID]Level
}
