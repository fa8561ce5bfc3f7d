package replication

import (
	"github.com/zeusync/replica/internal/core/diff"
	"github.com/zeusync/replica/internal/core/interest"
	"github.com/zeusync/replica/internal/core/models"
	"github.com/zeusync/replica/internal/core/observability/log"
	"github.com/zeusync/replica/internal/core/variant"
	"github.com/zeusync/replica/pkg/sequence"
)

// candidate is one entity selected for a batch, carrying the interest level
// that selected it.
type candidate struct {
	id    models.EntityID
	level interest.Level
}

// CreateBatch assembles the outbound batch for one observer and advances the
// tick counter. Entities are selected by the interest policy, or all
// registered entities when interest management is off, then drained highest
// priority first. Per entity the full-versus-delta decision is:
//
//  1. pending full state requested -> full, flag cleared
//  2. cached priority at or above critical -> full, always
//  3. delta compression disabled -> full
//  4. resync interval elapsed since last sync -> full
//  5. otherwise delta against the last recorded state; an empty diff sends
//     nothing at all for that entity this tick
//
// An entity whose Serialize fails is logged and skipped; it never aborts the
// rest of the batch.
func (m *Manager) CreateBatch(observer models.EntityID) models.StateBatch {
	m.tick++
	now := m.now().UnixMilli()
	// Lists start allocated so an encoded empty batch still carries all
	// three of them; receivers treat a missing list as a malformed batch.
	batch := models.StateBatch{
		Tick:       m.tick,
		Timestamp:  now,
		FullStates: []models.EntityState{},
		Deltas:     []models.DeltaUpdate{},
		Destroyed:  []models.EntityID{},
	}

	queue := sequence.NewPriorityQueue[candidate]()
	if m.policy != nil && m.config.UseInterestManagement {
		for id, level := range m.policy.InterestSet(observer) {
			if _, registered := m.entities[id]; !registered {
				continue
			}
			queue.Enqueue(candidate{id: id, level: level},
				priorityRank(m.priorityOf(id), level))
		}
	} else {
		for id := range m.entities {
			queue.Enqueue(candidate{id: id, level: interest.LevelHigh},
				priorityRank(m.priorityOf(id), interest.LevelHigh))
		}
	}

	for {
		next, ok := queue.Dequeue()
		if !ok {
			break
		}
		m.appendEntity(&batch, next.id, now)
	}

	m.metrics.BatchesCreated++
	return batch
}

// priorityRank folds the entity priority and the observer's interest level
// into one drain rank. Priority dominates; interest breaks ties.
func priorityRank(priority models.Priority, level interest.Level) int {
	return int(priority)<<3 | int(level)
}

// appendEntity serializes one entity and places it into exactly one of the
// batch's lists, or none when nothing changed.
func (m *Manager) appendEntity(batch *models.StateBatch, id models.EntityID, now int64) {
	entity := m.entities[id]
	fields, err := entity.Serialize()
	if err != nil {
		m.metrics.SerializeFailures++
		m.logger.Warn("serialize failed, entity skipped this tick",
			log.Int64("entity", int64(id)),
			log.Error(err))
		return
	}
	if m.policy != nil {
		if positioned, ok := entity.(models.Positioned); ok {
			x, y, z := positioned.Position()
			m.policy.UpdatePosition(id, x, y, z)
		}
	}

	state := models.EntityState{
		ID:        id,
		Type:      entity.Type(),
		Fields:    fields,
		Timestamp: now,
	}
	if priority, ok := m.priorities[id]; ok {
		p := priority
		state.Priority = &p
	}

	baseline, hasBaseline := m.store.LastState(id)

	_, pending := m.pendingFull[id]
	switch {
	case pending:
		delete(m.pendingFull, id)
	case m.priorityOf(id) >= models.PriorityCritical:
		// Critical entities always resend in full; a lost packet must never
		// leave them stale behind an unappliable delta.
	case !m.config.UseDeltaCompression:
	case !hasBaseline:
	case now-m.lastSync[id] > m.config.ResyncInterval.Milliseconds():
	default:
		changes := diff.Compute(baseline.Fields, fields)
		if changes.IsEmpty() {
			m.metrics.SkippedUnchanged++
			return
		}
		batch.Deltas = append(batch.Deltas, models.DeltaUpdate{
			ID:            id,
			Changes:       changes,
			Timestamp:     now,
			BaseTimestamp: baseline.Timestamp,
		})
		m.store.Record(state)
		m.lastSync[id] = now
		m.metrics.DeltasSent++
		return
	}

	batch.FullStates = append(batch.FullStates, state)
	m.store.Record(state)
	m.lastSync[id] = now
	m.metrics.FullStatesSent++
}

// ApplyBatch reconstructs local state from an inbound batch. A nil batch is
// rejected outright with no effect. The three item lists are processed
// independently and in order: full states, then deltas, then destroys. One
// bad item is skipped and logged, never aborting the remaining items.
func (m *Manager) ApplyBatch(batch *models.StateBatch) error {
	if batch == nil {
		m.metrics.BatchesRejected++
		m.logger.Error("apply batch: rejected malformed batch")
		return ErrMalformedBatch
	}

	for _, state := range batch.FullStates {
		m.applyFullState(state)
	}
	for _, delta := range batch.Deltas {
		m.applyDelta(delta)
	}
	for _, id := range batch.Destroyed {
		m.applyDestroy(id)
	}

	m.metrics.BatchesApplied++
	return nil
}

func (m *Manager) applyFullState(state models.EntityState) {
	if state.ID == 0 || state.Fields == nil {
		m.metrics.RejectedItems++
		m.logger.Warn("apply batch: malformed full state skipped",
			log.Int64("entity", int64(state.ID)))
		return
	}
	entity, known := m.entities[state.ID]
	if !known {
		// A batch never creates local entities; the host registers them
		// through its own spawn path first.
		m.metrics.UnknownEntities++
		m.logger.Warn("apply batch: full state for unknown entity skipped",
			log.Int64("entity", int64(state.ID)))
		return
	}
	if err := entity.Deserialize(state.Fields); err != nil {
		m.metrics.DeserializeFailures++
		m.logger.Error("apply batch: deserialize failed, full state skipped",
			log.Int64("entity", int64(state.ID)),
			log.Error(err))
		return
	}
	m.store.Record(state)
	m.metrics.FullStatesApplied++
	m.refreshPosition(state.ID, entity)
}

func (m *Manager) applyDelta(delta models.DeltaUpdate) {
	if delta.ID == 0 || len(delta.Changes) == 0 {
		m.metrics.RejectedItems++
		m.logger.Warn("apply batch: malformed delta skipped",
			log.Int64("entity", int64(delta.ID)))
		return
	}
	entity, known := m.entities[delta.ID]
	if !known {
		m.metrics.UnknownEntities++
		m.logger.Warn("apply batch: delta for unknown entity skipped",
			log.Int64("entity", int64(delta.ID)))
		return
	}
	baseline, ok := m.store.LastState(delta.ID)
	if !ok {
		// Recovery is the sender's periodic resync; a delta with no base
		// cannot be applied and is not worth a retransmission request.
		m.metrics.MissingBaselines++
		m.logger.Warn("apply batch: delta without baseline skipped",
			log.Int64("entity", int64(delta.ID)))
		return
	}
	if baseline.Timestamp != delta.BaseTimestamp {
		m.logger.Debug("apply batch: delta rebased onto drifted baseline",
			log.Int64("entity", int64(delta.ID)),
			log.Int64("base", delta.BaseTimestamp),
			log.Int64("have", baseline.Timestamp))
	}

	fields := variant.CloneFields(baseline.Fields)
	diff.Apply(fields, delta.Changes)
	if err := entity.Deserialize(fields); err != nil {
		m.metrics.DeserializeFailures++
		m.logger.Error("apply batch: deserialize failed, delta skipped",
			log.Int64("entity", int64(delta.ID)),
			log.Error(err))
		return
	}
	m.store.Record(models.EntityState{
		ID:        delta.ID,
		Type:      baseline.Type,
		Fields:    fields,
		Timestamp: delta.Timestamp,
		Priority:  baseline.Priority,
	})
	m.metrics.DeltasApplied++
	m.refreshPosition(delta.ID, entity)
}

func (m *Manager) applyDestroy(id models.EntityID) {
	if id == 0 {
		m.metrics.RejectedItems++
		m.logger.Warn("apply batch: malformed destroy skipped")
		return
	}
	if _, known := m.entities[id]; !known {
		m.metrics.UnknownEntities++
		m.logger.Warn("apply batch: destroy for unknown entity skipped",
			log.Int64("entity", int64(id)))
		return
	}
	m.Unregister(id)
	m.metrics.Destroyed++
}

// refreshPosition feeds the entity's post-apply position back into the
// interest policy so receiving managers keep spatial filtering current.
func (m *Manager) refreshPosition(id models.EntityID, entity models.Replicable) {
	if m.policy == nil {
		return
	}
	if positioned, ok := entity.(models.Positioned); ok {
		x, y, z := positioned.Position()
		m.policy.UpdatePosition(id, x, y, z)
	}
}
