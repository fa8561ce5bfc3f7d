package replication

// Metrics provides counters for replication activity since manager creation.
type Metrics struct {
	BatchesCreated  uint64 // Calls to CreateBatch
	BatchesApplied  uint64 // Accepted ApplyBatch calls
	BatchesRejected uint64 // ApplyBatch calls rejected as malformed

	FullStatesSent   uint64 // Full snapshots included in outbound batches
	DeltasSent       uint64 // Deltas included in outbound batches
	SkippedUnchanged uint64 // Entities omitted because nothing changed

	FullStatesApplied uint64 // Full snapshots applied from inbound batches
	DeltasApplied     uint64 // Deltas applied from inbound batches
	Destroyed         uint64 // Entities removed by inbound destroy lists

	SerializeFailures   uint64 // Entities skipped during CreateBatch
	DeserializeFailures uint64 // Items skipped during ApplyBatch
	RejectedItems       uint64 // Malformed items skipped during ApplyBatch
	UnknownEntities     uint64 // Items referencing unregistered entities
	MissingBaselines    uint64 // Deltas dropped for lack of a baseline
}

// Metrics returns a copy of the manager's counters.
func (m *Manager) Metrics() Metrics {
	return m.metrics
}
