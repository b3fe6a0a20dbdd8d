package media

import (
	"context"
	"errors"
	"os"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(nil, filepath.Join(t.TempDir(), "media_db.json"), nil)
	require.NoError(t, store.Load())
	return store
}

func mustRecord(t *testing.T, fileID string, mediaType MediaType, caption string) Record {
	t.Helper()
	record, err := NewRecord(fileID, mediaType, caption, "alice")
	require.NoError(t, err)
	return record
}

func TestStoreLoadMissingDocumentIsEmpty(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	assert.Empty(t, store.All())
	assert.NotNil(t, store.All())
	assert.Equal(t, 0, store.Len())
}

func TestStoreAppendPreservesOrderAndUniqueIDs(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	var want []Record
	for i, caption := range []string{"one", "two", "three", "four"} {
		mediaType := []MediaType{MediaTypePhoto, MediaTypeVideo, MediaTypeDocument}[i%3]
		record := mustRecord(t, "ref-"+caption, mediaType, caption)
		require.NoError(t, store.Append(ctx, record))
		want = append(want, record)
	}

	got := store.All()
	require.Equal(t, want, got)
	seen := map[string]bool{}
	for _, r := range got {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestStoreAllReturnsCopy(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Append(context.Background(), mustRecord(t, "ph1", MediaTypePhoto, "sunset beach")))

	view := store.All()
	view[0].Description = "mutated"
	assert.Equal(t, "sunset beach", store.All()[0].Description)
}

func TestStoreAppendRejectsDuplicateAndInvalid(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	record := mustRecord(t, "ph1", MediaTypePhoto, "sunset beach")
	require.NoError(t, store.Append(ctx, record))

	err := store.Append(ctx, record)
	assert.ErrorIs(t, err, ErrDuplicateID)

	err = store.Append(ctx, Record{ID: "x", FileID: "f", MediaType: "sticker", Description: "d", Username: "u"})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	err = store.Append(ctx, Record{ID: "y", FileID: "f", MediaType: MediaTypePhoto, Description: "", Username: "u"})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	assert.Equal(t, 1, store.Len())
}

func TestStoreConcurrentAppendsAreAllPersisted(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	const writers = 50

	records := make([]Record, writers)
	for i := range records {
		records[i] = mustRecord(t, fmt.Sprintf("ref-%d", i), MediaTypePhoto, fmt.Sprintf("caption %d", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func(record Record) {
			defer wg.Done()
			errs <- store.Append(ctx, record)
		}(records[i])
		go func() {
			defer wg.Done()
			_ = store.Search("caption")
			_ = store.All()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, writers, store.Len())
	onDisk, err := ReadFile(store.Path())
	require.NoError(t, err)
	assert.ElementsMatch(t, records, onDisk)
	assert.Equal(t, store.All(), onDisk)
}

func TestStoreAppendHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := store.Append(ctx, mustRecord(t, "ph1", MediaTypePhoto, "sunset"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.Len())
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 5} {
		path := filepath.Join(t.TempDir(), "nested", "media_db.json")
		store := NewStore(nil, path, nil)
		require.NoError(t, store.Load())
		for i := 0; i < n; i++ {
			require.NoError(t, store.Append(context.Background(), mustRecord(t, "ref", MediaTypeDocument, "caption")))
		}
		require.NoError(t, store.Persist())

		reloaded := NewStore(nil, path, nil)
		require.NoError(t, reloaded.Load())
		assert.Equal(t, store.All(), reloaded.All(), "n=%d", n)
	}
}

func TestStorePersistIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Append(context.Background(), mustRecord(t, "vid1", MediaTypeVideo, "Mountain Hike")))

	require.NoError(t, store.Persist())
	first, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	require.NoError(t, store.Persist())
	second, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStorePersistedLayout(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	record := Record{ID: "id-1", FileID: "ph1", MediaType: MediaTypePhoto, Description: "sunset beach", Username: "alice"}
	require.NoError(t, store.Append(context.Background(), record))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	want := "[\n  {\n    \"id\": \"id-1\",\n    \"file_id\": \"ph1\",\n    \"media_type\": \"photo\",\n    \"description\": \"sunset beach\",\n    \"username\": \"alice\"\n  }\n]\n"
	assert.Equal(t, want, string(data))
}

func TestStoreLoadCorruptDocument(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":       "",
		"not json":    "{{{",
		"object":      `{"id":"a"}`,
		"wrong type":  `[{"id": 42}]`,
		"scalar item": `["a"]`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "media_db.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			store := NewStore(nil, path, nil)
			err := store.Load()
			var corrupt *CorruptStoreError
			require.ErrorAs(t, err, &corrupt)
			assert.Equal(t, path, corrupt.Path)
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestStoreLoadNullDocumentIsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "media_db.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))
	store := NewStore(nil, path, nil)
	require.NoError(t, store.Load())
	assert.NotNil(t, store.All())
	assert.Empty(t, store.All())
}

func TestStoreLoadKeepsNonDeliverableRecords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "media_db.json")
	doc := `[
  {"id": "a", "file_id": "f1", "media_type": "sticker", "description": "Legacy beach", "username": "bob"},
  {"id": "b", "file_id": "f2", "description": "no type beach"},
  {"id": "c", "file_id": "f3", "media_type": "photo", "description": "fine", "username": "eve"}
]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	store := NewStore(nil, path, nil)
	require.NoError(t, store.Load())

	all := store.All()
	require.Len(t, all, 3)
	assert.False(t, all[0].Deliverable())
	assert.False(t, all[1].Deliverable())
	assert.True(t, all[2].Deliverable())

	matches := store.Search("BEACH")
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "b", matches[1].ID)

	err := store.Append(context.Background(), Record{ID: "a", FileID: "x", MediaType: MediaTypePhoto, Description: "d", Username: "u"})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestStoreAppendPersistFailureKeepsRecordInMemory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "media_db.json")
	store := NewStore(nil, path, nil)
	require.NoError(t, store.Load())
	// A directory at the document path makes the atomic replace fail.
	require.NoError(t, os.Mkdir(path, 0o755))

	record := mustRecord(t, "ph1", MediaTypePhoto, "sunset beach")
	err := store.Append(context.Background(), record)
	var persistErr *PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, path, persistErr.Path)
	assert.Equal(t, []Record{record}, store.All())

	entries, readErr := os.ReadDir(filepath.Dir(path))
	require.NoError(t, readErr)
	require.Len(t, entries, 1, "temp file left behind")
	assert.Equal(t, filepath.Base(path), entries[0].Name())
}

func TestCorruptStoreErrorUnwraps(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	err := error(&CorruptStoreError{Path: "p", Err: inner})
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "corrupt media store p")

	err = &PersistenceError{Path: "p", Err: inner}
	assert.ErrorIs(t, err, inner)
}
