package models

import "github.com/mbacelar/herdlog/internal/storage"

// Farm is a top-level property the scoped records hang off. Deleting a farm
// never cascades; records keep their farmId and simply become invisible.
type Farm struct {
	storage.Meta
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// FarmPatch is a typed partial update; nil fields are left untouched.
type FarmPatch struct {
	Name     *string
	Location *string
	Notes    *string
}

// Apply merges the set fields over the farm and reports whether the update
// should advance the record's updatedAt stamp.
func (p FarmPatch) Apply(f *Farm) bool {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Location != nil {
		f.Location = *p.Location
	}
	if p.Notes != nil {
		f.Notes = *p.Notes
	}
	return true
}
