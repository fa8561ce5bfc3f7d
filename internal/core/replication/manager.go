package replication

import (
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/replica/internal/core/history"
	"github.com/zeusync/replica/internal/core/interest"
	"github.com/zeusync/replica/internal/core/models"
	"github.com/zeusync/replica/internal/core/observability/log"
)

// Manager orchestrates entity state replication: it owns the registry of
// replicable entities, decides full-state versus delta per entity per tick,
// builds outbound batches for observers and applies inbound batches back onto
// local entities.
//
// A Manager is designed for single-threaded, tick-driven invocation. Calls
// against one instance must be serialized by the host; there is no internal
// locking. A multi-threaded host either snapshots state into an immutable
// form first or wraps access in its own mutual exclusion.
type Manager struct {
	config Config
	logger log.Log

	entities    map[models.EntityID]models.Replicable
	lastSync    map[models.EntityID]int64
	priorities  map[models.EntityID]models.Priority
	pendingFull map[models.EntityID]struct{}
	tick        uint64

	policy  interest.Policy
	store   *history.Store
	metrics Metrics

	// now is swappable for tests; production managers use wall clock.
	now func() time.Time
}

// NewManager creates a manager with the given configuration. A nil logger
// falls back to a fresh info-level logger. Invalid configuration fields are
// replaced with defaults rather than failing; hosts that want strict
// validation call Config.Validate first.
func NewManager(config Config, logger log.Log) *Manager {
	if config.HistorySize <= 0 {
		config.HistorySize = DefaultConfig().HistorySize
	}
	if config.ResyncInterval <= 0 {
		config.ResyncInterval = DefaultConfig().ResyncInterval
	}
	if logger == nil {
		logger = log.New(log.LevelInfo)
	}
	return &Manager{
		config:      config,
		logger:      logger.With(log.String("manager", uuid.NewString()[:8])),
		entities:    make(map[models.EntityID]models.Replicable),
		lastSync:    make(map[models.EntityID]int64),
		priorities:  make(map[models.EntityID]models.Priority),
		pendingFull: make(map[models.EntityID]struct{}),
		store:       history.NewStore(config.HistorySize),
		now:         time.Now,
	}
}

// Register adds an entity to the registry and marks it for a full snapshot on
// its next batch inclusion. Registering an already-registered id is a no-op
// with a warning, not an error.
func (m *Manager) Register(entity models.Replicable) {
	if entity == nil {
		m.logger.Warn("register: nil entity ignored")
		return
	}
	id := entity.ID()
	if _, exists := m.entities[id]; exists {
		m.logger.Warn("register: entity already registered",
			log.Int64("entity", int64(id)))
		return
	}
	m.entities[id] = entity
	m.pendingFull[id] = struct{}{}
	if prioritized, ok := entity.(models.Prioritized); ok {
		m.priorities[id] = prioritized.Priority()
	}
	if m.policy != nil {
		m.policy.Track(id)
		if positioned, ok := entity.(models.Positioned); ok {
			x, y, z := positioned.Position()
			m.policy.UpdatePosition(id, x, y, z)
		}
	}
	m.logger.Debug("entity registered",
		log.Int64("entity", int64(id)),
		log.String("type", entity.Type()))
}

// Unregister removes the entity from the registry, drops its bookkeeping and
// clears its history.
func (m *Manager) Unregister(id models.EntityID) {
	delete(m.entities, id)
	delete(m.lastSync, id)
	delete(m.priorities, id)
	delete(m.pendingFull, id)
	m.store.Clear(id)
	if m.policy != nil {
		m.policy.Remove(id)
	}
}

// RequestFullState forces a full snapshot for the entity on its next batch
// inclusion. Receivers signal this through the host when they detect desync.
func (m *Manager) RequestFullState(id models.EntityID) {
	if _, exists := m.entities[id]; !exists {
		m.logger.Warn("request full state: entity not registered",
			log.Int64("entity", int64(id)))
		return
	}
	m.pendingFull[id] = struct{}{}
}

// SetInterestPolicy installs the policy used to filter entities per observer
// and seeds it with every currently registered entity. A nil policy means
// every batch is a broadcast.
func (m *Manager) SetInterestPolicy(policy interest.Policy) {
	m.policy = policy
	if policy == nil {
		return
	}
	for id, entity := range m.entities {
		policy.Track(id)
		if positioned, ok := entity.(models.Positioned); ok {
			x, y, z := positioned.Position()
			policy.UpdatePosition(id, x, y, z)
		}
	}
}

// InterestPolicy returns the active policy, nil when broadcasting.
func (m *Manager) InterestPolicy() interest.Policy {
	return m.policy
}

// History exposes the manager's state history store for time-indexed lookups
// such as lag compensation. The store shares the manager's single-threaded
// access model.
func (m *Manager) History() *history.Store {
	return m.store
}

// EntityCount returns the number of registered entities.
func (m *Manager) EntityCount() int {
	return len(m.entities)
}

// HasEntity reports whether the entity is registered.
func (m *Manager) HasEntity(id models.EntityID) bool {
	_, exists := m.entities[id]
	return exists
}

// CurrentTick returns the tick counter of the most recent batch.
func (m *Manager) CurrentTick() uint64 {
	return m.tick
}

// Config returns the current configuration.
func (m *Manager) Config() Config {
	return m.config
}

// UpdateConfig merges a partial configuration update. History capacity is
// fixed at construction; a HistorySize change applies to snapshots recorded
// after the next store rebuild and is logged so hosts notice.
func (m *Manager) UpdateConfig(patch ConfigPatch) {
	next := patch.apply(m.config)
	if next.HistorySize != m.config.HistorySize && next.HistorySize > 0 {
		m.store = history.NewStore(next.HistorySize)
		m.logger.Warn("history size changed, snapshot history reset",
			log.Int("history_size", next.HistorySize))
		for id := range m.entities {
			m.pendingFull[id] = struct{}{}
		}
	}
	m.config = next
}

// priorityOf returns the cached priority for the entity, defaulting to
// PriorityNormal.
func (m *Manager) priorityOf(id models.EntityID) models.Priority {
	if priority, ok := m.priorities[id]; ok {
		return priority
	}
	return models.PriorityNormal
}
