// Package breeding manages pregnancy records scoped to the active farm, plus
// the pure gestation calculations used to project and classify due dates.
package breeding

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/mbacelar/herdlog/internal/domain/models"
	"github.com/mbacelar/herdlog/internal/service/history"
	"github.com/mbacelar/herdlog/internal/storage"
)

// DateLayout is the wire format of coverage, due and record dates. ISO date
// strings compare lexicographically in chronological order, which the display
// sorts rely on.
const DateLayout = "2006-01-02"

// ErrNoActiveFarm indicates a farm-scoped mutation was attempted with no
// farm selected.
var ErrNoActiveFarm = errors.New("no active farm selected")

// ErrNotFound indicates the pregnancy record id does not exist.
var ErrNotFound = errors.New("pregnancy record not found")

// ErrStoreFailed indicates the persistence layer rejected the write.
var ErrStoreFailed = errors.New("store write failed")

// FarmScope supplies the currently selected farm id ("" when none).
type FarmScope interface {
	ActiveFarm() string
}

// Service owns pregnancy CRUD under the active-farm visibility rule.
type Service struct {
	col      *storage.Collection[models.PregnancyRecord, *models.PregnancyRecord]
	scope    FarmScope
	recorder *history.Recorder
	logger   *zap.Logger
}

// NewService wires a breeding service.
func NewService(
	col *storage.Collection[models.PregnancyRecord, *models.PregnancyRecord],
	scope FarmScope,
	recorder *history.Recorder,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{col: col, scope: scope, recorder: recorder, logger: logger}
}

// List returns the pregnancy records of the active farm, soonest due date
// first (ties keep insertion order). With no active farm the result is empty
// regardless of what the collection holds: records for other farms are never
// shown, though they are never deleted either.
func (s *Service) List() []models.PregnancyRecord {
	farmID := s.scope.ActiveFarm()
	if farmID == "" {
		return nil
	}

	var records []models.PregnancyRecord
	for _, r := range s.col.Load() {
		if r.FarmID == farmID {
			records = append(records, r)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DueDate < records[j].DueDate
	})
	return records
}

// Find returns the record with the given id, if present. Lookup is by id
// alone; visibility filtering applies to listings, not direct access.
func (s *Service) Find(id string) (models.PregnancyRecord, bool) {
	return s.col.FindByID(id)
}

// Add records a new pregnancy bound to the active farm.
func (s *Service) Add(rec models.PregnancyRecord) (models.PregnancyRecord, error) {
	farmID := s.scope.ActiveFarm()
	if farmID == "" {
		return models.PregnancyRecord{}, ErrNoActiveFarm
	}

	rec.FarmID = farmID
	stored, ok := s.col.Add(rec)
	if !ok {
		return models.PregnancyRecord{}, ErrStoreFailed
	}
	s.recorder.Record(models.EntryPregnancy, farmID, fmt.Sprintf("Pregnancy recorded - cow %s", stored.CowID))
	return stored, nil
}

// Update applies a partial update to the record.
func (s *Service) Update(id string, patch models.PregnancyPatch) error {
	current, found := s.col.FindByID(id)
	if !found {
		return ErrNotFound
	}
	if !s.col.Update(id, func(r *models.PregnancyRecord) bool { return patch.Apply(r) }) {
		return ErrStoreFailed
	}

	cowID := current.CowID
	if patch.CowID != nil {
		cowID = *patch.CowID
	}
	s.recorder.Record(models.EntryPregnancy, current.FarmID, fmt.Sprintf("Pregnancy updated - cow %s", cowID))
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
	s.recorder.Record(models.EntryPregnancy, rec.FarmID, fmt.Sprintf("Pregnancy removed - cow %s", rec.CowID))
	return nil
}
