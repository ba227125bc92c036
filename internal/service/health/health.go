// Package health manages disease and treatment records scoped to the active
// farm.
package health

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/mbacelar/herdlog/internal/domain/models"
	"github.com/mbacelar/herdlog/internal/service/history"
	"github.com/mbacelar/herdlog/internal/storage"
)

// ErrNoActiveFarm indicates a farm-scoped mutation was attempted with no
// farm selected.
var ErrNoActiveFarm = errors.New("no active farm selected")

// ErrNotFound indicates the disease record id does not exist.
var ErrNotFound = errors.New("disease record not found")

// ErrStoreFailed indicates the persistence layer rejected the write.
var ErrStoreFailed = errors.New("store write failed")

// FarmScope supplies the currently selected farm id ("" when none).
type FarmScope interface {
	ActiveFarm() string
}

// Service owns disease CRUD under the active-farm visibility rule.
type Service struct {
	col      *storage.Collection[models.DiseaseRecord, *models.DiseaseRecord]
	scope    FarmScope
	recorder *history.Recorder
	logger   *zap.Logger
}

// NewService wires a health service.
func NewService(
	col *storage.Collection[models.DiseaseRecord, *models.DiseaseRecord],
	scope FarmScope,
	recorder *history.Recorder,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{col: col, scope: scope, recorder: recorder, logger: logger}
}

// List returns the disease records of the active farm, most recent record
// date first (ties keep insertion order). With no active farm the result is
// empty.
func (s *Service) List() []models.DiseaseRecord {
	farmID := s.scope.ActiveFarm()
	if farmID == "" {
		return nil
	}

	var records []models.DiseaseRecord
	for _, r := range s.col.Load() {
		if r.FarmID == farmID {
			records = append(records, r)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RecordDate > records[j].RecordDate
	})
	return records
}

// Find returns the record with the given id, if present.
func (s *Service) Find(id string) (models.DiseaseRecord, bool) {
	return s.col.FindByID(id)
}

// Add records a new disease event bound to the active farm.
func (s *Service) Add(rec models.DiseaseRecord) (models.DiseaseRecord, error) {
	farmID := s.scope.ActiveFarm()
	if farmID == "" {
		return models.DiseaseRecord{}, ErrNoActiveFarm
	}

	rec.FarmID = farmID
	stored, ok := s.col.Add(rec)
	if !ok {
		return models.DiseaseRecord{}, ErrStoreFailed
	}
	s.recorder.Record(models.EntryDisease, farmID,
		fmt.Sprintf("Disease recorded - animal %s (%s)", stored.AnimalID, stored.DiseaseName))
	return stored, nil
}

// Update applies a partial update to the record.
func (s *Service) Update(id string, patch models.DiseasePatch) error {
	current, found := s.col.FindByID(id)
	if !found {
		return ErrNotFound
	}
	if !s.col.Update(id, func(r *models.DiseaseRecord) bool { return patch.Apply(r) }) {
		return ErrStoreFailed
	}

	animalID := current.AnimalID
	if patch.AnimalID != nil {
		animalID = *patch.AnimalID
	}
	s.recorder.Record(models.EntryDisease, current.FarmID, fmt.Sprintf("Disease updated - animal %s", animalID))
	return nil
}

// Remove deletes the record. Removing an absent id is a silent no-op.
func (s *Service) Remove(id string) error {
	rec, found := s.col.FindByID(id)
	if !found {
		return nil
	}
	if !s.col.Remove(id) {
		return ErrStoreFailed
	}
	s.recorder.Record(models.EntryDisease, rec.FarmID,
		fmt.Sprintf("Disease removed - animal %s (%s)", rec.AnimalID, rec.DiseaseName))
	return nil
}
