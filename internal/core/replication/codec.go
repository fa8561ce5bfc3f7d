package replication

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/zeusync/replica/internal/core/models"
	"github.com/zeusync/replica/pkg/generic"
)

// BatchCodec converts batches to and from their wire form. The core hands the
// transport an in-memory StateBatch; a codec is what the host uses at the
// transport boundary.
type BatchCodec interface {
	Encode(batch models.StateBatch) ([]byte, error)
	Decode(data []byte) (*models.StateBatch, error)
}

// JSONBatchCodec encodes batches as JSON. Simple and human-readable; hosts
// with tighter bandwidth budgets can swap in a binary codec behind the same
// interface.
type JSONBatchCodec struct {
	buffers *generic.Pool[*bytes.Buffer]
}

var _ BatchCodec = (*JSONBatchCodec)(nil)

// NewJSONBatchCodec creates the codec with a warm encode-buffer pool.
func NewJSONBatchCodec() *JSONBatchCodec {
	return &JSONBatchCodec{
		buffers: generic.NewHotPool(func() *bytes.Buffer {
			return bytes.NewBuffer(make([]byte, 0, 4096))
		}, 4),
	}
}

// Encode serializes the batch. Encoded output is deterministic for identical
// batches since map keys are emitted sorted.
func (c *JSONBatchCodec) Encode(batch models.StateBatch) ([]byte, error) {
	buf := c.buffers.Get()
	defer func() {
		buf.Reset()
		c.buffers.Put(buf)
	}()

	if err := json.NewEncoder(buf).Encode(batch); err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// rawBatch mirrors StateBatch with pointer lists so a missing list can be
// told apart from an empty one.
type rawBatch struct {
	Tick       *uint64               `json:"tick"`
	Timestamp  *int64                `json:"timestamp"`
	FullStates *[]models.EntityState `json:"fullStates"`
	Deltas     *[]models.DeltaUpdate `json:"deltas"`
	Destroyed  *[]models.EntityID    `json:"destroyed"`
}

// Decode parses and shape-checks a wire batch. A batch that is not a JSON
// object, or that is missing any of the three item lists, is rejected whole;
// per-item validation stays with Manager.ApplyBatch.
func (c *JSONBatchCodec) Decode(data []byte) (*models.StateBatch, error) {
	var raw rawBatch
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
	}
	if raw.FullStates == nil || raw.Deltas == nil || raw.Destroyed == nil {
		return nil, fmt.Errorf("%w: missing item lists", ErrMalformedBatch)
	}
	batch := &models.StateBatch{
		FullStates: *raw.FullStates,
		Deltas:     *raw.Deltas,
		Destroyed:  *raw.Destroyed,
	}
	if raw.Tick != nil {
		batch.Tick = *raw.Tick
	}
	if raw.Timestamp != nil {
		batch.Timestamp = *raw.Timestamp
	}
	return batch, nil
}
