package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbacelar/herdlog/internal/domain/models"
	"github.com/mbacelar/herdlog/internal/service/history"
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

type stubScope struct {
	farmID string
}

func (s *stubScope) ActiveFarm() string { return s.farmID }

type fixture struct {
	svc     *Service
	scope   *stubScope
	histCol *storage.Collection[models.HistoryEntry, *models.HistoryEntry]
}

func newFixture() fixture {
	kv := newMemKV()
	col := storage.NewCollection[models.DiseaseRecord](kv, storage.BucketDiseases, nil)
	histCol := storage.NewCollection[models.HistoryEntry](kv, storage.BucketHistory, nil)
	scope := &stubScope{farmID: "farm-1"}

	return fixture{
		svc:     NewService(col, scope, history.NewRecorder(histCol, nil), nil),
		scope:   scope,
		histCol: histCol,
	}
}

func TestAddBindsActiveFarm(t *testing.T) {
	f := newFixture()

	stored, err := f.svc.Add(models.DiseaseRecord{
		AnimalID:    "ox-4",
		DiseaseName: "foot rot",
		RecordDate:  "2024-05-01",
		Status:      models.StatusActive,
	})
	require.NoError(t, err)
	assert.Equal(t, "farm-1", stored.FarmID)

	entries := f.histCol.Load()
	require.Len(t, entries, 1)
	assert.Equal(t, "Disease recorded - animal ox-4 (foot rot)", entries[0].Description)
	assert.Equal(t, models.EntryDisease, entries[0].Type)
}

func TestAddWithoutActiveFarm(t *testing.T) {
	f := newFixture()
	f.scope.farmID = ""

	_, err := f.svc.Add(models.DiseaseRecord{AnimalID: "ox-4", DiseaseName: "foot rot"})
	assert.ErrorIs(t, err, ErrNoActiveFarm)
}

func TestListScopesToActiveFarmAndSortsByDateDesc(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Add(models.DiseaseRecord{AnimalID: "old", DiseaseName: "x", RecordDate: "2024-01-10"})
	require.NoError(t, err)
	_, err = f.svc.Add(models.DiseaseRecord{AnimalID: "recent", DiseaseName: "y", RecordDate: "2024-05-20"})
	require.NoError(t, err)

	f.scope.farmID = "farm-2"
	_, err = f.svc.Add(models.DiseaseRecord{AnimalID: "other", DiseaseName: "z", RecordDate: "2024-06-01"})
	require.NoError(t, err)

	f.scope.farmID = "farm-1"
	records := f.svc.List()
	require.Len(t, records, 2)
	assert.Equal(t, "recent", records[0].AnimalID)
	assert.Equal(t, "old", records[1].AnimalID)

	f.scope.farmID = ""
	assert.Empty(t, f.svc.List())
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()

	stored, err := f.svc.Add(models.DiseaseRecord{
		AnimalID:    "ox-4",
		DiseaseName: "foot rot",
		Status:      models.StatusActive,
	})
	require.NoError(t, err)

	cured := models.StatusCured
	require.NoError(t, f.svc.Update(stored.ID, models.DiseasePatch{Status: &cured}))

	got, found := f.svc.Find(stored.ID)
	require.True(t, found)
	assert.Equal(t, models.StatusCured, got.Status)
	assert.NotNil(t, got.UpdatedAt)

	err = f.svc.Update("missing", models.DiseasePatch{Status: &cured})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMutationHistoryCarriesRecordFarm(t *testing.T) {
	f := newFixture()

	stored, err := f.svc.Add(models.DiseaseRecord{AnimalID: "ox-4", DiseaseName: "foot rot"})
	require.NoError(t, err)

	f.scope.farmID = "farm-2"
	cured := models.StatusCured
	require.NoError(t, f.svc.Update(stored.ID, models.DiseasePatch{Status: &cured}))
	require.NoError(t, f.svc.Remove(stored.ID))

	entries := f.histCol.Load()
	require.Len(t, entries, 3)
	assert.Equal(t, "farm-1", entries[1].FarmID)
	assert.Equal(t, "farm-1", entries[2].FarmID)
}

func TestRemove(t *testing.T) {
	f := newFixture()

	stored, err := f.svc.Add(models.DiseaseRecord{AnimalID: "ox-4", DiseaseName: "foot rot"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Remove(stored.ID))
	assert.Empty(t, f.svc.List())

	entries := f.histCol.Load()
	require.Len(t, entries, 2)
	assert.Equal(t, "Disease removed - animal ox-4 (foot rot)", entries[1].Description)

	require.NoError(t, f.svc.Remove(stored.ID))
}
