package models

import "github.com/mbacelar/herdlog/internal/storage"

// Pasture is a grazing area. Pastures form a single shared pool across all
// farms; only pregnancy and disease records are farm-scoped.
type Pasture struct {
	storage.Meta
	Name             string   `json:"name"`
	LargeAnimalCount int      `json:"largeAnimalCount"`
	SmallAnimalCount int      `json:"smallAnimalCount"`
	AreaHectares     *float64 `json:"areaHectares,omitempty"`
	Notes            string   `json:"notes,omitempty"`
}

// TotalAnimals is a display-only derived value, never stored.
func (p Pasture) TotalAnimals() int {
	return p.LargeAnimalCount + p.SmallAnimalCount
}

// PasturePatch is a typed partial update; nil fields are left untouched.
type PasturePatch struct {
	Name             *string
	LargeAnimalCount *int
	SmallAnimalCount *int
	AreaHectares     *float64
	Notes            *string
}

// Apply merges the set fields over the pasture. The returned touch flag is
// true only when an animal count actually changes value: edits to name, area
// or notes alone do not advance updatedAt.
func (p PasturePatch) Apply(t *Pasture) bool {
	touched := false
	if p.LargeAnimalCount != nil && *p.LargeAnimalCount != t.LargeAnimalCount {
		touched = true
	}
	if p.SmallAnimalCount != nil && *p.SmallAnimalCount != t.SmallAnimalCount {
		touched = true
	}

	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.LargeAnimalCount != nil {
		t.LargeAnimalCount = *p.LargeAnimalCount
	}
	if p.SmallAnimalCount != nil {
		t.SmallAnimalCount = *p.SmallAnimalCount
	}
	if p.AreaHectares != nil {
		t.AreaHectares = p.AreaHectares
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	return touched
}
