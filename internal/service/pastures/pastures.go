// Package pastures manages the shared pasture pool. Pastures are not
// farm-scoped: the same pool is visible whichever farm is active, and scoped
// records on any farm may link to any pasture.
package pastures

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mbacelar/herdlog/internal/domain/models"
	"github.com/mbacelar/herdlog/internal/service/history"
	"github.com/mbacelar/herdlog/internal/storage"
)

// ErrNotFound indicates the pasture id does not exist.
var ErrNotFound = errors.New("pasture not found")

// ErrStoreFailed indicates the persistence layer rejected the write.
var ErrStoreFailed = errors.New("store write failed")

// Summary is a pasture together with its display-only derived values.
// Nothing here is stored; counts are recomputed from the latest collection
// state on every call.
type Summary struct {
	models.Pasture
	TotalAnimals   int
	PregnancyCount int
	DiseaseCount   int
}

// Service owns pasture CRUD and the cross-collection aggregation.
type Service struct {
	col         *storage.Collection[models.Pasture, *models.Pasture]
	pregnancies *storage.Collection[models.PregnancyRecord, *models.PregnancyRecord]
	diseases    *storage.Collection[models.DiseaseRecord, *models.DiseaseRecord]
	recorder    *history.Recorder
	logger      *zap.Logger
}

// NewService wires a pasture service. The pregnancy and disease collections
// are read-only here, used solely for the linked-record counts.
func NewService(
	col *storage.Collection[models.Pasture, *models.Pasture],
	pregnancies *storage.Collection[models.PregnancyRecord, *models.PregnancyRecord],
	diseases *storage.Collection[models.DiseaseRecord, *models.DiseaseRecord],
	recorder *history.Recorder,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{col: col, pregnancies: pregnancies, diseases: diseases, recorder: recorder, logger: logger}
}

// List returns every pasture in insertion order.
func (s *Service) List() []models.Pasture {
	return s.col.Load()
}

// Find returns the pasture with the given id, if present.
func (s *Service) Find(id string) (models.Pasture, bool) {
	return s.col.FindByID(id)
}

// NameByID resolves a pasture name for display. A dangling reference (the
// pasture was deleted) resolves to no match, never an error.
func (s *Service) NameByID(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	p, found := s.col.FindByID(id)
	if !found {
		return "", false
	}
	return p.Name, true
}

// Summaries returns every pasture with its total animal count and the number
// of pregnancy and disease records linked to it. Scans both collections on
// each call so the counts always match the latest state.
func (s *Service) Summaries() []Summary {
	pastureList := s.col.Load()
	pregnancyList := s.pregnancies.Load()
	diseaseList := s.diseases.Load()

	summaries := make([]Summary, 0, len(pastureList))
	for _, p := range pastureList {
		sum := Summary{Pasture: p, TotalAnimals: p.TotalAnimals()}
		for _, r := range pregnancyList {
			if r.PastureID == p.ID {
				sum.PregnancyCount++
			}
		}
		for _, r := range diseaseList {
			if r.PastureID == p.ID {
				sum.DiseaseCount++
			}
		}
		summaries = append(summaries, sum)
	}
	return summaries
}

// Add registers a new pasture and records the action in the history.
func (s *Service) Add(p models.Pasture) (models.Pasture, error) {
	stored, ok := s.col.Add(p)
	if !ok {
		return models.Pasture{}, ErrStoreFailed
	}
	s.recorder.Record(models.EntryPasture, "", fmt.Sprintf("Pasture %q registered", stored.Name))
	return stored, nil
}

// Update applies a partial update. updatedAt advances only when an animal
// count actually changes value; the patch carries that policy.
func (s *Service) Update(id string, patch models.PasturePatch) error {
	current, found := s.col.FindByID(id)
	if !found {
		return ErrNotFound
	}
	if !s.col.Update(id, func(p *models.Pasture) bool { return patch.Apply(p) }) {
		return ErrStoreFailed
	}

	name := current.Name
	if patch.Name != nil {
		name = *patch.Name
	}
	s.recorder.Record(models.EntryPasture, "", fmt.Sprintf("Pasture %q updated", name))
	return nil
}

// Remove deletes the pasture and records the action. Records referencing the
// pasture keep their pastureId and the reference goes dangling. Removing an
// absent id is a silent no-op.
func (s *Service) Remove(id string) error {
	p, found := s.col.FindByID(id)
	if !found {
		return nil
	}
	if !s.col.Remove(id) {
		return ErrStoreFailed
	}
	s.recorder.Record(models.EntryPasture, "", fmt.Sprintf("Pasture %q removed", p.Name))
	return nil
}
