package server

import (
	"github.com/zeusync/replica/internal/core/models"
	"github.com/zeusync/replica/internal/core/variant"
)

// Avatar is the demo replicable entity backing one connected observer.
type Avatar struct {
	id     models.EntityID
	Name   string
	X      float64
	Y      float64
	Z      float64
	Health float64
}

var (
	_ models.Replicable  = (*Avatar)(nil)
	_ models.Positioned  = (*Avatar)(nil)
	_ models.Prioritized = (*Avatar)(nil)
)

// NewAvatar creates an avatar at the origin with full health.
func NewAvatar(id models.EntityID, name string) *Avatar {
	return &Avatar{id: id, Name: name, Health: 100}
}

func (a *Avatar) ID() models.EntityID {
	return a.id
}

func (a *Avatar) Type() string {
	return "avatar"
}

// Priority marks avatars critical: player state always replicates in full.
func (a *Avatar) Priority() models.Priority {
	return models.PriorityCritical
}

func (a *Avatar) Position() (x, y, z float64) {
	return a.X, a.Y, a.Z
}

func (a *Avatar) Serialize() (map[string]variant.Value, error) {
	return map[string]variant.Value{
		"name":   variant.String(a.Name),
		"health": variant.Number(a.Health),
		"position": variant.Map(map[string]variant.Value{
			"x": variant.Number(a.X),
			"y": variant.Number(a.Y),
			"z": variant.Number(a.Z),
		}),
	}, nil
}

func (a *Avatar) Deserialize(fields map[string]variant.Value) error {
	if name, ok := fields["name"]; ok && name.Kind() == variant.KindString {
		a.Name = name.AsString()
	}
	if health, ok := fields["health"]; ok && health.Kind() == variant.KindNumber {
		a.Health = health.AsNumber()
	}
	if pos, ok := fields["position"]; ok && pos.Kind() == variant.KindMap {
		m := pos.AsMap()
		if x, ok := m["x"]; ok && x.Kind() == variant.KindNumber {
			a.X = x.AsNumber()
		}
		if y, ok := m["y"]; ok && y.Kind() == variant.KindNumber {
			a.Y = y.AsNumber()
		}
		if z, ok := m["z"]; ok && z.Kind() == variant.KindNumber {
			a.Z = z.AsNumber()
		}
	}
	return nil
}
