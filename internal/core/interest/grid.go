package interest

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/replica/internal/core/models"
)

// GridConfig holds the discretization parameters for SpatialGrid.
type GridConfig struct {
	// CellSize is the edge length of one cubic cell in world units.
	CellSize float64 `json:"cell_size" yaml:"cell_size"`
	// CellRadius is the maximum Manhattan cell distance that still yields
	// LevelLow; anything beyond is LevelNone.
	CellRadius int `json:"cell_radius" yaml:"cell_radius"`
}

// DefaultGridConfig returns a grid tuned for the default interest radius.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		CellSize:   50,
		CellRadius: 2,
	}
}

type cell struct {
	x, y, z int32
}

// SpatialGrid scores interest by the Manhattan distance between discretized
// grid cells: same cell is LevelHigh, an adjacent cell LevelMedium, anything
// up to CellRadius cells away LevelLow. This trades precision for cheap
// membership tests at scale; there is no per-pair distance computation.
//
// Cell occupancy is kept in hash buckets keyed by xxhash of the packed cell
// coordinates, so InterestSet only walks the buckets inside the observer's
// cell neighbourhood instead of every tracked entity. A bucket may contain
// hash collisions; levels are always confirmed against the entity's true cell.
type SpatialGrid struct {
	config  GridConfig
	tracked map[models.EntityID]struct{}
	cells   map[models.EntityID]cell
	buckets map[uint64]map[models.EntityID]struct{}
}

var _ Policy = (*SpatialGrid)(nil)

// NewSpatialGrid creates the policy. Non-positive parameters fall back to the
// defaults.
func NewSpatialGrid(config GridConfig) *SpatialGrid {
	defaults := DefaultGridConfig()
	if config.CellSize <= 0 {
		config.CellSize = defaults.CellSize
	}
	if config.CellRadius <= 0 {
		config.CellRadius = defaults.CellRadius
	}
	return &SpatialGrid{
		config:  config,
		tracked: make(map[models.EntityID]struct{}),
		cells:   make(map[models.EntityID]cell),
		buckets: make(map[uint64]map[models.EntityID]struct{}),
	}
}

// Track registers the entity without a cell. Until UpdatePosition is called
// the entity scores LevelNone for everyone but itself.
func (p *SpatialGrid) Track(id models.EntityID) {
	p.tracked[id] = struct{}{}
}

// UpdatePosition re-bins the entity into the cell containing the position.
func (p *SpatialGrid) UpdatePosition(id models.EntityID, x, y, z float64) {
	p.tracked[id] = struct{}{}
	next := cell{
		x: int32(math.Floor(x / p.config.CellSize)),
		y: int32(math.Floor(y / p.config.CellSize)),
		z: int32(math.Floor(z / p.config.CellSize)),
	}
	prev, had := p.cells[id]
	if had && prev == next {
		return
	}
	if had {
		p.unbucket(id, prev)
	}
	p.cells[id] = next
	key := p.cellKey(next)
	bucket, ok := p.buckets[key]
	if !ok {
		bucket = make(map[models.EntityID]struct{})
		p.buckets[key] = bucket
	}
	bucket[id] = struct{}{}
}

// Remove drops the entity from its cell and all bookkeeping.
func (p *SpatialGrid) Remove(id models.EntityID) {
	if c, ok := p.cells[id]; ok {
		p.unbucket(id, c)
	}
	delete(p.cells, id)
	delete(p.tracked, id)
}

// InterestLevel maps the Manhattan cell distance between observer and
// candidate onto a level. A missing cell on either side yields LevelNone.
func (p *SpatialGrid) InterestLevel(observer, candidate models.EntityID) Level {
	if _, ok := p.tracked[candidate]; !ok {
		return LevelNone
	}
	if observer == candidate {
		return LevelCritical
	}
	from, ok := p.cells[observer]
	if !ok {
		return LevelNone
	}
	to, ok := p.cells[candidate]
	if !ok {
		return LevelNone
	}
	return p.levelForCells(from, to)
}

// InterestSet walks the cell neighbourhood of the observer and collects every
// entity with a level above LevelNone.
func (p *SpatialGrid) InterestSet(observer models.EntityID) map[models.EntityID]Level {
	set := make(map[models.EntityID]Level)
	center, ok := p.cells[observer]
	if !ok {
		if _, tracked := p.tracked[observer]; tracked {
			set[observer] = LevelCritical
		}
		return set
	}
	r := int32(p.config.CellRadius)
	for dx := -r; dx <= r; dx++ {
		remX := r - abs32(dx)
		for dy := -remX; dy <= remX; dy++ {
			remY := remX - abs32(dy)
			for dz := -remY; dz <= remY; dz++ {
				probe := cell{x: center.x + dx, y: center.y + dy, z: center.z + dz}
				bucket, found := p.buckets[p.cellKey(probe)]
				if !found {
					continue
				}
				for id := range bucket {
					// Confirm against the true cell; buckets may hold
					// hash collisions.
					if p.cells[id] != probe {
						continue
					}
					if observer == id {
						set[id] = LevelCritical
						continue
					}
					if level := p.levelForCells(center, probe); level > LevelNone {
						set[id] = level
					}
				}
			}
		}
	}
	return set
}

func (p *SpatialGrid) levelForCells(from, to cell) Level {
	d := abs32(from.x-to.x) + abs32(from.y-to.y) + abs32(from.z-to.z)
	switch {
	case d == 0:
		return LevelHigh
	case d == 1:
		return LevelMedium
	case d <= int32(p.config.CellRadius):
		return LevelLow
	default:
		return LevelNone
	}
}

func (p *SpatialGrid) unbucket(id models.EntityID, c cell) {
	key := p.cellKey(c)
	if bucket, ok := p.buckets[key]; ok {
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(p.buckets, key)
		}
	}
}

func (p *SpatialGrid) cellKey(c cell) uint64 {
	var packed [12]byte
	binary.LittleEndian.PutUint32(packed[0:], uint32(c.x))
	binary.LittleEndian.PutUint32(packed[4:], uint32(c.y))
	binary.LittleEndian.PutUint32(packed[8:], uint32(c.z))
	return xxhash.Sum64(packed[:])
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
