package interest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/replica/internal/core/models"
)

func TestAlwaysInterested(t *testing.T) {
	policy := NewAlwaysInterested()
	policy.Track(1)
	policy.Track(2)
	policy.Track(3)

	assert.Equal(t, LevelCritical, policy.InterestLevel(1, 1))
	assert.Equal(t, LevelHigh, policy.InterestLevel(1, 2))
	assert.Equal(t, LevelNone, policy.InterestLevel(1, 99))

	set := policy.InterestSet(1)
	assert.Len(t, set, 3)
	assert.Equal(t, LevelCritical, set[1])
	assert.Equal(t, LevelHigh, set[3])

	policy.Remove(2)
	assert.Equal(t, LevelNone, policy.InterestLevel(1, 2))
	assert.Len(t, policy.InterestSet(1), 2)
}

func TestSpatialRadiusLevels(t *testing.T) {
	policy := NewSpatialRadius(RadiusConfig{
		Critical: 10,
		High:     30,
		Medium:   60,
		Interest: 100,
	})
	policy.UpdatePosition(1, 0, 0, 0)

	tests := []struct {
		name     string
		distance float64
		want     Level
	}{
		{"inside critical", 5, LevelCritical},
		{"critical boundary", 10, LevelCritical},
		{"inside high", 25, LevelHigh},
		{"inside medium", 45, LevelMedium},
		{"inside interest", 80, LevelLow},
		{"interest boundary", 100, LevelLow},
		{"beyond interest", 150, LevelNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy.UpdatePosition(2, tt.distance, 0, 0)
			assert.Equal(t, tt.want, policy.InterestLevel(1, 2))

			set := policy.InterestSet(1)
			_, included := set[2]
			assert.Equal(t, tt.want > LevelNone, included)
		})
	}
}

func TestSpatialRadiusMissingPosition(t *testing.T) {
	policy := NewSpatialRadius(DefaultRadiusConfig())
	policy.Track(1)
	policy.UpdatePosition(2, 0, 0, 0)

	// Candidate without position.
	assert.Equal(t, LevelNone, policy.InterestLevel(2, 1))
	// Observer without position.
	assert.Equal(t, LevelNone, policy.InterestLevel(1, 2))
	// Self interest holds even without a position.
	assert.Equal(t, LevelCritical, policy.InterestLevel(1, 1))
}

func TestSpatialRadiusEuclidean(t *testing.T) {
	policy := NewSpatialRadius(RadiusConfig{Critical: 10, High: 30, Medium: 60, Interest: 100})
	policy.UpdatePosition(1, 0, 0, 0)
	// 3-4-12 box: distance 13.
	policy.UpdatePosition(2, 3, 4, 12)
	assert.Equal(t, LevelHigh, policy.InterestLevel(1, 2))
}

func TestSpatialGridLevels(t *testing.T) {
	policy := NewSpatialGrid(GridConfig{CellSize: 10, CellRadius: 3})
	policy.UpdatePosition(1, 5, 5, 5) // cell (0,0,0)

	tests := []struct {
		name    string
		x, y, z float64
		want    Level
	}{
		{"same cell", 9, 9, 9, LevelHigh},
		{"adjacent cell", 15, 5, 5, LevelMedium},
		{"two cells away", 25, 5, 5, LevelLow},
		{"three cells manhattan", 15, 15, 15, LevelLow},
		{"beyond radius", 45, 5, 5, LevelNone},
		{"negative coordinates adjacent", -5, 5, 5, LevelMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy.UpdatePosition(2, tt.x, tt.y, tt.z)
			assert.Equal(t, tt.want, policy.InterestLevel(1, 2))

			set := policy.InterestSet(1)
			_, included := set[2]
			assert.Equal(t, tt.want > LevelNone, included)
		})
	}
}

func TestSpatialGridRebinsOnMove(t *testing.T) {
	policy := NewSpatialGrid(GridConfig{CellSize: 10, CellRadius: 2})
	policy.UpdatePosition(1, 0, 0, 0)
	policy.UpdatePosition(2, 5, 0, 0)
	assert.Equal(t, LevelHigh, policy.InterestLevel(1, 2))

	policy.UpdatePosition(2, 500, 0, 0)
	assert.Equal(t, LevelNone, policy.InterestLevel(1, 2))
	_, included := policy.InterestSet(1)[2]
	assert.False(t, included)

	policy.UpdatePosition(2, 15, 0, 0)
	assert.Equal(t, LevelMedium, policy.InterestLevel(1, 2))
}

func TestSpatialGridRemove(t *testing.T) {
	policy := NewSpatialGrid(GridConfig{CellSize: 10, CellRadius: 2})
	policy.UpdatePosition(1, 0, 0, 0)
	policy.UpdatePosition(2, 5, 0, 0)

	policy.Remove(2)
	assert.Equal(t, LevelNone, policy.InterestLevel(1, 2))
	assert.Len(t, policy.InterestSet(1), 1)
}

func TestSpatialGridSelfWithoutCell(t *testing.T) {
	policy := NewSpatialGrid(GridConfig{})
	policy.Track(7)

	set := policy.InterestSet(7)
	assert.Equal(t, map[models.EntityID]Level{7: LevelCritical}, set)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "none", LevelNone.String())
	assert.Equal(t, "critical", LevelCritical.String())
	assert.Equal(t, "unknown", Level(42).String())
}

func TestRadiusConfigFor(t *testing.T) {
	derived := RadiusConfigFor(200)
	assert.Equal(t, float64(20), derived.Critical)
	assert.Equal(t, float64(60), derived.High)
	assert.Equal(t, float64(120), derived.Medium)
	assert.Equal(t, float64(200), derived.Interest)

	assert.Equal(t, DefaultRadiusConfig(), RadiusConfigFor(0))
}
