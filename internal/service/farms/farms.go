// Package farms manages the farm roster and the active-farm selector: a
// single durable pointer to the farm whose scoped records are in view.
package farms

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mbacelar/herdlog/internal/domain/models"
	"github.com/mbacelar/herdlog/internal/storage"
)

// ErrNotFound indicates the farm id does not exist.
var ErrNotFound = errors.New("farm not found")

// ErrStoreFailed indicates the persistence layer rejected the write.
var ErrStoreFailed = errors.New("store write failed")

// Service owns farm CRUD and the active-farm selection. One instance is
// constructed per session and threaded through every consumer; there is no
// package-level state.
type Service struct {
	col       *storage.Collection[models.Farm, *models.Farm]
	kv        storage.KV
	logger    *zap.Logger
	observers []func(farmID string)
}

// NewService wires a farm service over the farm collection and the raw
// key-value store holding the active-farm pointer.
func NewService(col *storage.Collection[models.Farm, *models.Farm], kv storage.KV, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{col: col, kv: kv, logger: logger}
}

// List returns every registered farm in insertion order.
func (s *Service) List() []models.Farm {
	return s.col.Load()
}

// Find returns the farm with the given id, if present.
func (s *Service) Find(id string) (models.Farm, bool) {
	return s.col.FindByID(id)
}

// HasFarms reports whether at least one farm is registered; the first-run
// prompt hangs off this.
func (s *Service) HasFarms() bool {
	return len(s.col.Load()) > 0
}

// Add registers a new farm. Farm mutations are not written to the activity
// history; only the scoped domain collections are audited.
func (s *Service) Add(farm models.Farm) (models.Farm, error) {
	stored, ok := s.col.Add(farm)
	if !ok {
		return models.Farm{}, ErrStoreFailed
	}
	s.logger.Debug("farm registered", zap.String("id", stored.ID), zap.String("name", stored.Name))
	return stored, nil
}

// Update applies a partial update to the farm.
func (s *Service) Update(id string, patch models.FarmPatch) error {
	if _, found := s.col.FindByID(id); !found {
		return ErrNotFound
	}
	if !s.col.Update(id, func(f *models.Farm) bool { return patch.Apply(f) }) {
		return ErrStoreFailed
	}
	return nil
}

// Remove deletes the farm. Pastures, pregnancies and diseases referencing it
// are deliberately left in place; their farmId simply goes dangling. Removing
// the currently active farm clears the selection. Removing an absent id is a
// no-op.
func (s *Service) Remove(id string) error {
	if _, found := s.col.FindByID(id); !found {
		return nil
	}
	if !s.col.Remove(id) {
		return ErrStoreFailed
	}
	if s.ActiveFarm() == id {
		return s.SetActiveFarm("")
	}
	return nil
}

// ActiveFarm returns the id of the currently selected farm, or "" when none
// is selected. An unreadable pointer degrades to "no selection".
func (s *Service) ActiveFarm() string {
	payload, ok, err := s.kv.Get(storage.BucketActiveFarm)
	if err != nil {
		s.logger.Warn("degraded read of active farm pointer", zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return string(payload)
}

// SetActiveFarm persists the selection ("" clears it) and synchronously
// notifies every subscriber with the new id. Observers are expected to
// re-query the collections they display; re-entrant reads are safe because
// every store operation is a complete read-modify-write.
func (s *Service) SetActiveFarm(id string) error {
	var err error
	if id == "" {
		err = s.kv.Delete(storage.BucketActiveFarm)
	} else {
		err = s.kv.Put(storage.BucketActiveFarm, []byte(id))
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}

	for _, notify := range s.observers {
		notify(id)
	}
	return nil
}

// OnFarmChanged subscribes to selection changes. Callbacks run synchronously
// on the mutating call, in subscription order.
func (s *Service) OnFarmChanged(fn func(farmID string)) {
	s.observers = append(s.observers, fn)
}
