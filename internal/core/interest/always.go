package interest

import "github.com/zeusync/replica/internal/core/models"

// AlwaysInterested treats every tracked entity as relevant to every observer:
// LevelCritical for the observer itself, LevelHigh for everyone else. Suited
// to small-scale or debugging deployments where filtering is not worth it.
type AlwaysInterested struct {
	tracked map[models.EntityID]struct{}
}

var _ Policy = (*AlwaysInterested)(nil)

// NewAlwaysInterested creates the policy with no tracked entities.
func NewAlwaysInterested() *AlwaysInterested {
	return &AlwaysInterested{tracked: make(map[models.EntityID]struct{})}
}

// Track registers the entity.
func (p *AlwaysInterested) Track(id models.EntityID) {
	p.tracked[id] = struct{}{}
}

// UpdatePosition only implies tracking; positions are irrelevant here.
func (p *AlwaysInterested) UpdatePosition(id models.EntityID, _, _, _ float64) {
	p.tracked[id] = struct{}{}
}

// Remove drops the entity.
func (p *AlwaysInterested) Remove(id models.EntityID) {
	delete(p.tracked, id)
}

// InterestLevel is LevelCritical for self, LevelHigh for any other tracked
// entity.
func (p *AlwaysInterested) InterestLevel(observer, candidate models.EntityID) Level {
	if _, ok := p.tracked[candidate]; !ok {
		return LevelNone
	}
	if observer == candidate {
		return LevelCritical
	}
	return LevelHigh
}

// InterestSet returns all tracked entities.
func (p *AlwaysInterested) InterestSet(observer models.EntityID) map[models.EntityID]Level {
	set := make(map[models.EntityID]Level, len(p.tracked))
	for id := range p.tracked {
		set[id] = p.InterestLevel(observer, id)
	}
	return set
}
