package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbacelar/herdlog/internal/domain/models"
	"github.com/mbacelar/herdlog/internal/storage"
)

type memKV struct {
	data map[string][]byte
}

func newMemKV() *memKV { return &memKV{data: map[string][]byte{}} }

func (m *memKV) Get(bucket string) ([]byte, bool, error) {
	payload, ok := m.data[bucket]
	return payload, ok, nil
}

func (m *memKV) Put(bucket string, payload []byte) error {
	m.data[bucket] = payload
	return nil
}

func (m *memKV) Delete(bucket string) error {
	delete(m.data, bucket)
	return nil
}

func newFixture(clock *time.Time) (*Recorder, *Service) {
	kv := newMemKV()
	col := storage.NewCollection[models.HistoryEntry](kv, storage.BucketHistory, nil,
		storage.WithClock(func() time.Time { return *clock }))
	return NewRecorder(col, nil), NewService(col, time.UTC, nil)
}

func TestListSortsNewestFirst(t *testing.T) {
	clock := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	recorder, svc := newFixture(&clock)

	recorder.Record(models.EntryPasture, "", "first")
	clock = clock.Add(time.Hour)
	recorder.Record(models.EntryPregnancy, "farm-1", "second")
	clock = clock.Add(time.Hour)
	recorder.Record(models.EntryDisease, "farm-1", "third")

	entries := svc.List("")
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Description)
	assert.Equal(t, "second", entries[1].Description)
	assert.Equal(t, "first", entries[2].Description)
}

func TestListFiltersByType(t *testing.T) {
	clock := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	recorder, svc := newFixture(&clock)

	recorder.Record(models.EntryPasture, "", "pasture entry")
	recorder.Record(models.EntryPregnancy, "farm-1", "pregnancy entry")
	recorder.Record(models.EntryDisease, "farm-1", "disease entry")

	entries := svc.List(models.EntryPregnancy)
	require.Len(t, entries, 1)
	assert.Equal(t, "pregnancy entry", entries[0].Description)

	assert.Len(t, svc.List(""), 3)
}

func TestGroupByDayLabels(t *testing.T) {
	clock := time.Date(2024, 5, 8, 16, 30, 0, 0, time.UTC)
	recorder, svc := newFixture(&clock)

	recorder.Record(models.EntryPasture, "", "older")
	clock = time.Date(2024, 5, 9, 8, 0, 0, 0, time.UTC)
	recorder.Record(models.EntryPasture, "", "yesterday morning")
	clock = time.Date(2024, 5, 9, 19, 0, 0, 0, time.UTC)
	recorder.Record(models.EntryPregnancy, "farm-1", "yesterday evening")
	clock = time.Date(2024, 5, 10, 7, 0, 0, 0, time.UTC)
	recorder.Record(models.EntryDisease, "farm-1", "today")

	today := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	groups := svc.GroupByDay(svc.List(""), today)

	require.Len(t, groups, 3)
	assert.Equal(t, "Today", groups[0].Label)
	require.Len(t, groups[0].Entries, 1)
	assert.Equal(t, "today", groups[0].Entries[0].Description)

	assert.Equal(t, "Yesterday", groups[1].Label)
	require.Len(t, groups[1].Entries, 2)
	assert.Equal(t, "yesterday evening", groups[1].Entries[0].Description)
	assert.Equal(t, "yesterday morning", groups[1].Entries[1].Description)

	assert.Equal(t, "Wednesday, 8 May 2024", groups[2].Label)
}

func TestGroupByDayRespectsTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	kv := newMemKV()
	clock := time.Date(2024, 5, 10, 1, 30, 0, 0, time.UTC) // still May 9 in Sao Paulo
	col := storage.NewCollection[models.HistoryEntry](kv, storage.BucketHistory, nil,
		storage.WithClock(func() time.Time { return clock }))
	recorder := NewRecorder(col, nil)
	svc := NewService(col, loc, nil)

	recorder.Record(models.EntryPasture, "", "late night entry")

	today := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	groups := svc.GroupByDay(svc.List(""), today)

	require.Len(t, groups, 1)
	assert.Equal(t, "Yesterday", groups[0].Label)
}

func TestRecorderNilSafety(t *testing.T) {
	var recorder *Recorder
	assert.NotPanics(t, func() {
		recorder.Record(models.EntryPasture, "", "into the void")
	})
}
