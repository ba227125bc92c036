package storage

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// record constrains PT to a pointer to T exposing the embedded Meta.
type record[T any] interface {
	*T
	RecordMeta() *Meta
}

type settings struct {
	now   func() time.Time
	newID func(time.Time) string
}

// Option customizes a collection, mainly for deterministic tests.
type Option func(*settings)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithIDFunc overrides the record id generator.
func WithIDFunc(gen func(time.Time) string) Option {
	return func(s *settings) { s.newID = gen }
}

// Collection provides generic CRUD over one persisted bucket. Every mutation
// rewrites the full collection blob; there are no partial writes and no
// transactions spanning buckets. Failed writes surface as false, never as a
// panic, and unreadable payloads degrade to an empty collection.
type Collection[T any, PT record[T]] struct {
	kv     KV
	bucket string
	logger *zap.Logger
	now    func() time.Time
	newID  func(time.Time) string
}

// NewCollection wires a collection over the given bucket.
func NewCollection[T any, PT record[T]](kv KV, bucket string, logger *zap.Logger, opts ...Option) *Collection[T, PT] {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := settings{now: time.Now, newID: newID}
	for _, opt := range opts {
		opt(&s)
	}
	return &Collection[T, PT]{
		kv:     kv,
		bucket: bucket,
		logger: logger,
		now:    s.now,
		newID:  s.newID,
	}
}

// Load returns every record in the bucket. An absent bucket yields an empty
// sequence; a corrupt or unreadable payload is logged and likewise treated as
// empty so bad persisted data never takes the application down.
func (c *Collection[T, PT]) Load() []T {
	payload, ok, err := c.kv.Get(c.bucket)
	if err != nil {
		c.logger.Warn("degraded read, treating collection as empty",
			zap.String("bucket", c.bucket), zap.Error(err))
		return nil
	}
	if !ok || len(payload) == 0 {
		return nil
	}

	var records []T
	if err := json.Unmarshal(payload, &records); err != nil {
		c.logger.Warn("corrupt payload, treating collection as empty",
			zap.String("bucket", c.bucket), zap.Error(err))
		return nil
	}
	return records
}

// Add assigns a fresh id and creation timestamp to the record, appends it and
// persists the whole collection. It reports false only when the persistence
// write fails; the stored record is returned on success.
func (c *Collection[T, PT]) Add(rec T) (T, bool) {
	records := c.Load()

	now := c.now()
	meta := PT(&rec).RecordMeta()
	meta.ID = c.newID(now)
	meta.CreatedAt = now
	meta.UpdatedAt = nil

	records = append(records, rec)
	if !c.persist(records) {
		var zero T
		return zero, false
	}
	return rec, true
}

// Update locates the record by id and hands it to apply, which merges a typed
// patch in place and reports whether the change should advance the updatedAt
// stamp. It returns false without side effects when the id is unknown, and
// false when the persistence write fails.
func (c *Collection[T, PT]) Update(id string, apply func(PT) bool) bool {
	records := c.Load()

	idx := -1
	for i := range records {
		if PT(&records[i]).RecordMeta().ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}

	if apply(PT(&records[idx])) {
		stamp := c.now()
		PT(&records[idx]).RecordMeta().UpdatedAt = &stamp
	}
	return c.persist(records)
}

// Remove filters the record out and persists. Removing an absent id is not an
// error; the call is idempotent.
func (c *Collection[T, PT]) Remove(id string) bool {
	records := c.Load()

	kept := make([]T, 0, len(records))
	for i := range records {
		if PT(&records[i]).RecordMeta().ID != id {
			kept = append(kept, records[i])
		}
	}
	return c.persist(kept)
}

// FindByID returns the record with the given id, if present.
func (c *Collection[T, PT]) FindByID(id string) (T, bool) {
	for _, rec := range c.Load() {
		if PT(&rec).RecordMeta().ID == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T, PT]) persist(records []T) bool {
	payload, err := json.Marshal(records)
	if err != nil {
		c.logger.Error("encode collection failed",
			zap.String("bucket", c.bucket), zap.Error(err))
		return false
	}
	if err := c.kv.Put(c.bucket, payload); err != nil {
		c.logger.Error("persist collection failed",
			zap.String("bucket", c.bucket), zap.Error(err))
		return false
	}
	return true
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newID builds a millisecond timestamp plus a short random base36 suffix.
// Collision probability is treated as negligible.
func newID(now time.Time) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}
