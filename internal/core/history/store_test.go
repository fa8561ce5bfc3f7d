package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/replica/internal/core/models"
	"github.com/zeusync/replica/internal/core/variant"
)

func snapshot(id models.EntityID, ts int64, x float64) models.EntityState {
	return models.EntityState{
		ID:        id,
		Type:      "test",
		Timestamp: ts,
		Fields: map[string]variant.Value{
			"x": variant.Number(x),
		},
	}
}

func TestRecordAndLastState(t *testing.T) {
	store := NewStore(8)

	_, ok := store.LastState(1)
	assert.False(t, ok)

	store.Record(snapshot(1, 1000, 10))
	store.Record(snapshot(1, 2000, 20))

	last, ok := store.LastState(1)
	require.True(t, ok)
	assert.Equal(t, int64(2000), last.Timestamp)
	assert.Equal(t, float64(20), last.Fields["x"].AsNumber())
	assert.Equal(t, 2, store.Len(1))
}

func TestRecordClonesFields(t *testing.T) {
	store := NewStore(8)
	fields := map[string]variant.Value{
		"pos": variant.Map(map[string]variant.Value{"x": variant.Number(1)}),
	}
	store.Record(models.EntityState{ID: 1, Timestamp: 1000, Fields: fields})

	// Mutate the live map after recording; the baseline must not move.
	fields["pos"].AsMap()["x"] = variant.Number(99)

	last, ok := store.LastState(1)
	require.True(t, ok)
	assert.Equal(t, float64(1), last.Fields["pos"].AsMap()["x"].AsNumber())
}

func TestCapacityEvictsOldest(t *testing.T) {
	store := NewStore(3)
	for i := int64(1); i <= 5; i++ {
		store.Record(snapshot(1, i*1000, float64(i)))
	}

	assert.Equal(t, 3, store.Len(1))

	// Timestamps 1000 and 2000 were evicted.
	_, ok := store.StateAtOrBefore(1, 2500)
	assert.False(t, ok, "evicted snapshot should be unavailable")

	oldest, ok := store.StateAtOrBefore(1, 3000)
	require.True(t, ok)
	assert.Equal(t, int64(3000), oldest.Timestamp)

	stats := store.Stats()
	assert.Equal(t, uint64(5), stats.Recorded)
	assert.Equal(t, uint64(2), stats.Evicted)
}

func TestStateAtOrBefore(t *testing.T) {
	store := NewStore(8)
	store.Record(snapshot(1, 1000, 1))
	store.Record(snapshot(1, 2000, 2))
	store.Record(snapshot(1, 3000, 3))

	tests := []struct {
		name   string
		query  int64
		wantTS int64
		wantOK bool
	}{
		{"before oldest", 999, 0, false},
		{"exact oldest", 1000, 1000, true},
		{"between snapshots", 2500, 2000, true},
		{"exact newest", 3000, 3000, true},
		{"after newest", 9999, 3000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, ok := store.StateAtOrBefore(1, tt.query)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantTS, state.Timestamp)
			}
		})
	}
}

func TestStaleTimestampReplacesNewest(t *testing.T) {
	store := NewStore(8)
	store.Record(snapshot(1, 1000, 1))
	store.Record(snapshot(1, 1000, 2))

	assert.Equal(t, 1, store.Len(1))
	last, ok := store.LastState(1)
	require.True(t, ok)
	assert.Equal(t, float64(2), last.Fields["x"].AsNumber())
}

func TestClear(t *testing.T) {
	store := NewStore(8)
	store.Record(snapshot(1, 1000, 1))
	store.Record(snapshot(2, 1000, 2))

	store.Clear(1)
	_, ok := store.LastState(1)
	assert.False(t, ok)
	_, ok = store.LastState(2)
	assert.True(t, ok)

	store.ClearAll()
	_, ok = store.LastState(2)
	assert.False(t, ok)
	assert.Empty(t, store.Entities())
}
