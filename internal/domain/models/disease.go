package models

import "github.com/mbacelar/herdlog/internal/storage"

// DiseaseStatus enumerates the treatment states of a disease record.
type DiseaseStatus string

const (
	StatusActive      DiseaseStatus = "active"
	StatusInTreatment DiseaseStatus = "in_treatment"
	StatusCured       DiseaseStatus = "cured"
)

// Valid reports whether the status is one of the known values.
func (s DiseaseStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInTreatment, StatusCured:
		return true
	}
	return false
}

// Label returns the human-readable form used in listings.
func (s DiseaseStatus) Label() string {
	switch s {
	case StatusInTreatment:
		return "In Treatment"
	case StatusCured:
		return "Cured"
	default:
		return "Active"
	}
}

// DiseaseRecord tracks one disease or treatment event for one animal.
type DiseaseRecord struct {
	storage.Meta
	FarmID       string        `json:"farmId"`
	AnimalID     string        `json:"animalId"`
	DiseaseName  string        `json:"diseaseName"`
	RecordDate   string        `json:"recordDate"`
	Status       DiseaseStatus `json:"status"`
	Treatment    string        `json:"treatment,omitempty"`
	Veterinarian string        `json:"veterinarian,omitempty"`
	PastureID    string        `json:"pastureId,omitempty"`
	Notes        string        `json:"notes,omitempty"`
}

// DiseasePatch is a typed partial update; nil fields are left untouched.
type DiseasePatch struct {
	AnimalID     *string
	DiseaseName  *string
	RecordDate   *string
	Status       *DiseaseStatus
	Treatment    *string
	Veterinarian *string
	PastureID    *string
	Notes        *string
}

// Apply merges the set fields over the record.
func (p DiseasePatch) Apply(r *DiseaseRecord) bool {
	if p.AnimalID != nil {
		r.AnimalID = *p.AnimalID
	}
	if p.DiseaseName != nil {
		r.DiseaseName = *p.DiseaseName
	}
	if p.RecordDate != nil {
		r.RecordDate = *p.RecordDate
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Treatment != nil {
		r.Treatment = *p.Treatment
	}
	if p.Veterinarian != nil {
		r.Veterinarian = *p.Veterinarian
	}
	if p.PastureID != nil {
		r.PastureID = *p.PastureID
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	return true
}
