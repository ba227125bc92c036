// Package history maintains the unified activity log: an append-only audit
// trail of every domain mutation, plus the read-side grouping used to display
// it.
package history

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mbacelar/herdlog/internal/domain/models"
	"github.com/mbacelar/herdlog/internal/storage"
)

const weekdayLayout = "Monday, 2 January 2006"

// Recorder appends audit entries on behalf of the domain services. A dropped
// entry is logged and otherwise ignored; the audit trail never blocks the
// mutation that triggered it.
type Recorder struct {
	col    *storage.Collection[models.HistoryEntry, *models.HistoryEntry]
	logger *zap.Logger
}

// NewRecorder wires a recorder over the history collection.
func NewRecorder(col *storage.Collection[models.HistoryEntry, *models.HistoryEntry], logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{col: col, logger: logger}
}

// Record appends one entry describing a completed action. farmID is empty for
// pasture-originated entries.
func (r *Recorder) Record(entryType models.EntryType, farmID, description string) {
	if r == nil || r.col == nil {
		return
	}
	entry := models.HistoryEntry{FarmID: farmID, Type: entryType, Description: description}
	if _, ok := r.col.Add(entry); !ok {
		r.logger.Warn("history entry dropped",
			zap.String("type", string(entryType)), zap.String("description", description))
	}
}

// DayGroup is one calendar day worth of entries under a display label.
type DayGroup struct {
	Label   string
	Entries []models.HistoryEntry
}

// Service reads the unified activity log.
type Service struct {
	col    *storage.Collection[models.HistoryEntry, *models.HistoryEntry]
	loc    *time.Location
	logger *zap.Logger
}

// NewService wires a history reader. loc controls which timezone calendar
// days are cut on; nil falls back to the system zone.
func NewService(col *storage.Collection[models.HistoryEntry, *models.HistoryEntry], loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{col: col, loc: loc, logger: logger}
}

// List loads the full history, optionally restricted to one entry type
// (empty means all), sorted most recent first. Ties keep insertion order.
func (s *Service) List(filter models.EntryType) []models.HistoryEntry {
	all := s.col.Load()

	entries := all
	if filter != "" {
		entries = make([]models.HistoryEntry, 0, len(all))
		for _, e := range all {
			if e.Type == filter {
				entries = append(entries, e)
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}

// GroupByDay buckets entries by calendar day, labelled "Today", "Yesterday"
// or a long weekday-date string. The input order is preserved within and
// across groups, so feeding it List output keeps everything newest-first.
func (s *Service) GroupByDay(entries []models.HistoryEntry, today time.Time) []DayGroup {
	var groups []DayGroup
	index := map[string]int{}

	for _, entry := range entries {
		label := s.dayLabel(entry.CreatedAt, today)
		i, seen := index[label]
		if !seen {
			i = len(groups)
			index[label] = i
			groups = append(groups, DayGroup{Label: label})
		}
		groups[i].Entries = append(groups[i].Entries, entry)
	}
	return groups
}

func (s *Service) dayLabel(created, today time.Time) string {
	day := dateOnly(created.In(s.loc))
	ref := dateOnly(today.In(s.loc))

	switch {
	case day.Equal(ref):
		return "Today"
	case day.Equal(ref.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return day.Format(weekdayLayout)
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
