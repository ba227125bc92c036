package models

import "github.com/mbacelar/herdlog/internal/storage"

// PregnancyRecord tracks one covering and its projected calving. Dates are
// stored as YYYY-MM-DD strings so lexicographic order matches chronological
// order. The due date may be user-entered or derived from the coverage date.
type PregnancyRecord struct {
	storage.Meta
	FarmID       string `json:"farmId"`
	CowID        string `json:"cowId"`
	BullID       string `json:"bullId,omitempty"`
	CoverageDate string `json:"coverageDate,omitempty"`
	DueDate      string `json:"dueDate,omitempty"`
	PastureID    string `json:"pastureId,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// PregnancyPatch is a typed partial update; nil fields are left untouched.
// The farm binding is set at creation and never patched.
type PregnancyPatch struct {
	CowID        *string
	BullID       *string
	CoverageDate *string
	DueDate      *string
	PastureID    *string
	Notes        *string
}

// Apply merges the set fields over the record.
func (p PregnancyPatch) Apply(r *PregnancyRecord) bool {
	if p.CowID != nil {
		r.CowID = *p.CowID
	}
	if p.BullID != nil {
		r.BullID = *p.BullID
	}
	if p.CoverageDate != nil {
		r.CoverageDate = *p.CoverageDate
	}
	if p.DueDate != nil {
		r.DueDate = *p.DueDate
	}
	if p.PastureID != nil {
		r.PastureID = *p.PastureID
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	return true
}
