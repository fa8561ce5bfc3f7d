package interest

import (
	"math"

	"github.com/zeusync/replica/internal/core/models"
)

// RadiusConfig holds the concentric distance thresholds for SpatialRadius,
// smallest first. Distances at or inside Critical map to LevelCritical, then
// outward through High, Medium and Interest (LevelLow); beyond Interest the
// entity is irrelevant.
type RadiusConfig struct {
	Critical float64 `json:"critical" yaml:"critical"`
	High     float64 `json:"high" yaml:"high"`
	Medium   float64 `json:"medium" yaml:"medium"`
	Interest float64 `json:"interest" yaml:"interest"`
}

// DefaultRadiusConfig returns thresholds suited to a mid-size play area.
func DefaultRadiusConfig() RadiusConfig {
	return RadiusConfig{
		Critical: 10,
		High:     30,
		Medium:   60,
		Interest: 100,
	}
}

// RadiusConfigFor derives concentric thresholds from a single interest cutoff,
// keeping the same proportions as the defaults. Used when a host configures
// just one radius instead of explicit thresholds.
func RadiusConfigFor(interestRadius float64) RadiusConfig {
	if interestRadius <= 0 {
		return DefaultRadiusConfig()
	}
	return RadiusConfig{
		Critical: interestRadius * 0.1,
		High:     interestRadius * 0.3,
		Medium:   interestRadius * 0.6,
		Interest: interestRadius,
	}
}

type position struct {
	x, y, z float64
}

// SpatialRadius scores interest by true Euclidean distance between last-known
// positions. Precise but O(n) per observer; for large worlds prefer
// SpatialGrid.
type SpatialRadius struct {
	config    RadiusConfig
	tracked   map[models.EntityID]struct{}
	positions map[models.EntityID]position
}

var _ Policy = (*SpatialRadius)(nil)

// NewSpatialRadius creates the policy. Zero-valued thresholds fall back to the
// defaults.
func NewSpatialRadius(config RadiusConfig) *SpatialRadius {
	if config == (RadiusConfig{}) {
		config = DefaultRadiusConfig()
	}
	return &SpatialRadius{
		config:    config,
		tracked:   make(map[models.EntityID]struct{}),
		positions: make(map[models.EntityID]position),
	}
}

// Track registers the entity without a position. Until UpdatePosition is
// called the entity scores LevelNone for everyone but itself.
func (p *SpatialRadius) Track(id models.EntityID) {
	p.tracked[id] = struct{}{}
}

// UpdatePosition records the entity's last-known position.
func (p *SpatialRadius) UpdatePosition(id models.EntityID, x, y, z float64) {
	p.tracked[id] = struct{}{}
	p.positions[id] = position{x: x, y: y, z: z}
}

// Remove drops the entity and its position.
func (p *SpatialRadius) Remove(id models.EntityID) {
	delete(p.tracked, id)
	delete(p.positions, id)
}

// InterestLevel maps the distance between observer and candidate onto the
// configured thresholds. A missing position on either side yields LevelNone.
func (p *SpatialRadius) InterestLevel(observer, candidate models.EntityID) Level {
	if _, ok := p.tracked[candidate]; !ok {
		return LevelNone
	}
	if observer == candidate {
		return LevelCritical
	}
	from, ok := p.positions[observer]
	if !ok {
		return LevelNone
	}
	to, ok := p.positions[candidate]
	if !ok {
		return LevelNone
	}
	return p.levelForDistance(distance(from, to))
}

// InterestSet returns every entity within the interest radius of the observer.
func (p *SpatialRadius) InterestSet(observer models.EntityID) map[models.EntityID]Level {
	set := make(map[models.EntityID]Level)
	for id := range p.tracked {
		if level := p.InterestLevel(observer, id); level > LevelNone {
			set[id] = level
		}
	}
	return set
}

func (p *SpatialRadius) levelForDistance(d float64) Level {
	switch {
	case d <= p.config.Critical:
		return LevelCritical
	case d <= p.config.High:
		return LevelHigh
	case d <= p.config.Medium:
		return LevelMedium
	case d <= p.config.Interest:
		return LevelLow
	default:
		return LevelNone
	}
}

func distance(a, b position) float64 {
	dx := a.x - b.x
	dy := a.y - b.y
	dz := a.z - b.z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
