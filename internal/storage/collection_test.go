package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	Meta
	Text string `json:"text"`
}

type memKV struct {
	data   map[string][]byte
	getErr error
	putErr error
	putCnt int
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(bucket string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	payload, ok := m.data[bucket]
	return payload, ok, nil
}

func (m *memKV) Put(bucket string, payload []byte) error {
	m.putCnt++
	if m.putErr != nil {
		return m.putErr
	}
	m.data[bucket] = payload
	return nil
}

func (m *memKV) Delete(bucket string) error {
	delete(m.data, bucket)
	return nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestCollectionAddAssignsMetadata(t *testing.T) {
	kv := newMemKV()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	col := NewCollection[note](kv, "notes", nil, WithClock(fixedClock(now)))

	stored, ok := col.Add(note{Text: "first"})
	require.True(t, ok)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, now, stored.CreatedAt)
	assert.Nil(t, stored.UpdatedAt)
	assert.Equal(t, "first", stored.Text)

	loaded := col.Load()
	require.Len(t, loaded, 1)
	assert.Equal(t, stored.ID, loaded[0].ID)
}

func TestCollectionAddGeneratesUniqueIDs(t *testing.T) {
	kv := newMemKV()
	col := NewCollection[note](kv, "notes", nil)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		stored, ok := col.Add(note{Text: "n"})
		require.True(t, ok)
		require.False(t, seen[stored.ID], "duplicate id %s", stored.ID)
		seen[stored.ID] = true
	}
}

func TestCollectionAddReportsWriteFailure(t *testing.T) {
	kv := newMemKV()
	kv.putErr = errors.New("disk full")
	col := NewCollection[note](kv, "notes", nil)

	_, ok := col.Add(note{Text: "doomed"})
	assert.False(t, ok)
	assert.Empty(t, col.Load())
}

func TestCollectionUpdate(t *testing.T) {
	kv := newMemKV()
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := created
	col := NewCollection[note](kv, "notes", nil, WithClock(func() time.Time { return clock }))

	stored, ok := col.Add(note{Text: "before"})
	require.True(t, ok)

	clock = created.Add(time.Hour)
	require.True(t, col.Update(stored.ID, func(n *note) bool {
		n.Text = "after"
		return true
	}))

	got, found := col.FindByID(stored.ID)
	require.True(t, found)
	assert.Equal(t, "after", got.Text)
	require.NotNil(t, got.UpdatedAt)
	assert.Equal(t, created.Add(time.Hour), *got.UpdatedAt)
	assert.Equal(t, created, got.CreatedAt)
}

func TestCollectionUpdateWithoutTouchKeepsStamp(t *testing.T) {
	kv := newMemKV()
	col := NewCollection[note](kv, "notes", nil)

	stored, ok := col.Add(note{Text: "before"})
	require.True(t, ok)

	require.True(t, col.Update(stored.ID, func(n *note) bool {
		n.Text = "after"
		return false
	}))

	got, found := col.FindByID(stored.ID)
	require.True(t, found)
	assert.Equal(t, "after", got.Text)
	assert.Nil(t, got.UpdatedAt)
}

func TestCollectionUpdateUnknownID(t *testing.T) {
	kv := newMemKV()
	col := NewCollection[note](kv, "notes", nil)

	writes := kv.putCnt
	assert.False(t, col.Update("missing", func(n *note) bool { return true }))
	assert.Equal(t, writes, kv.putCnt, "unknown id must not trigger a write")
}

func TestCollectionRemoveIsIdempotent(t *testing.T) {
	kv := newMemKV()
	col := NewCollection[note](kv, "notes", nil)

	a, _ := col.Add(note{Text: "a"})
	b, _ := col.Add(note{Text: "b"})

	assert.True(t, col.Remove(a.ID))
	assert.True(t, col.Remove(a.ID))

	loaded := col.Load()
	require.Len(t, loaded, 1)
	assert.Equal(t, b.ID, loaded[0].ID)
}

func TestCollectionLoadDegradesOnBadPayload(t *testing.T) {
	tests := []struct {
		name  string
		setup func(kv *memKV)
	}{
		{"corrupt json", func(kv *memKV) { kv.data["notes"] = []byte("{not json") }},
		{"read error", func(kv *memKV) { kv.getErr = errors.New("io error") }},
		{"absent bucket", func(kv *memKV) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newMemKV()
			tt.setup(kv)
			col := NewCollection[note](kv, "notes", nil)
			assert.Empty(t, col.Load())
		})
	}
}

func TestCollectionFindByID(t *testing.T) {
	kv := newMemKV()
	col := NewCollection[note](kv, "notes", nil)

	stored, _ := col.Add(note{Text: "target"})

	got, found := col.FindByID(stored.ID)
	require.True(t, found)
	assert.Equal(t, "target", got.Text)

	_, found = col.FindByID("missing")
	assert.False(t, found)
}

func TestNewIDShape(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	id := newID(now)
	assert.Regexp(t, `^1710072000000-[0-9a-z]{9}$`, id)
}
