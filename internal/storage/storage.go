// Package storage implements the generic record layer: named collections of
// JSON records persisted as one blob per bucket through a key-value store.
package storage

import "time"

// Bucket names for the persisted collections and the active-farm pointer.
const (
	BucketFarms       = "farms"
	BucketPastures    = "pastures"
	BucketPregnancies = "pregnancies"
	BucketDiseases    = "diseases"
	BucketHistory     = "history"
	BucketActiveFarm  = "active_farm"
)

// CollectionBuckets lists every bucket holding a record collection, in the
// order they are wiped by a full reset. The active-farm pointer is handled
// separately.
var CollectionBuckets = []string{
	BucketFarms,
	BucketPastures,
	BucketPregnancies,
	BucketDiseases,
	BucketHistory,
}

// KV is the minimal key-value surface the collection layer persists through.
type KV interface {
	Get(bucket string) ([]byte, bool, error)
	Put(bucket string, payload []byte) error
	Delete(bucket string) error
}

// Meta carries the identity and audit fields embedded in every stored record.
// UpdatedAt stays nil until the first update that touches the record.
type Meta struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// RecordMeta exposes the embedded metadata to the collection layer.
func (m *Meta) RecordMeta() *Meta { return m }
