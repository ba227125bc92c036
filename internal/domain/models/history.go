package models

import "github.com/mbacelar/herdlog/internal/storage"

// EntryType tags a history entry with the collection it originated from.
type EntryType string

const (
	EntryPasture   EntryType = "pasture"
	EntryPregnancy EntryType = "pregnancy"
	EntryDisease   EntryType = "disease"
)

// Valid reports whether the type is one of the known values.
func (t EntryType) Valid() bool {
	switch t {
	case EntryPasture, EntryPregnancy, EntryDisease:
		return true
	}
	return false
}

// HistoryEntry is an immutable audit record of a create/update/delete action.
// Entries are append-only and never edited or individually deleted. Pasture
// entries carry no farm id since pastures are not farm-scoped.
type HistoryEntry struct {
	storage.Meta
	FarmID      string    `json:"farmId,omitempty"`
	Type        EntryType `json:"type"`
	Description string    `json:"description"`
}
