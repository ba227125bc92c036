package breeding

import (
	"math"
	"time"
)

// GestationDays is the average bovine gestation period used for due-date
// projection.
const GestationDays = 283

// urgentWindowDays is the days-remaining threshold below which an upcoming
// calving is flagged urgent.
const urgentWindowDays = 30

// DueStatus classifies how close a due date is.
type DueStatus string

const (
	DueOverdue DueStatus = "overdue"
	DueUrgent  DueStatus = "urgent"
	DueOnTrack DueStatus = "on_track"
)

// ProjectDueDate returns the expected calving date for a covering: the
// coverage date plus the fixed gestation period. The projected value stays an
// ordinary editable field afterwards; the user may override it.
func ProjectDueDate(coverage time.Time) time.Time {
	return coverage.AddDate(0, 0, GestationDays)
}

// DaysRemaining counts whole days from today's midnight to the due date's
// midnight, rounding up. Zero or negative means the calving date has passed.
func DaysRemaining(due, today time.Time) int {
	diff := dateOnly(due).Sub(dateOnly(today))
	return int(math.Ceil(diff.Hours() / 24))
}

// ClassifyDueDate maps a days-remaining value to its display status.
func ClassifyDueDate(daysRemaining int) DueStatus {
	switch {
	case daysRemaining <= 0:
		return DueOverdue
	case daysRemaining <= urgentWindowDays:
		return DueUrgent
	default:
		return DueOnTrack
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
