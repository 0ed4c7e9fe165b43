package provenance

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	modTime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	fp := Fingerprint("export.csv", 2048, modTime)
	assert.Equal(t, "export.csv|2048|1705314600", fp)

	// The same triple always yields the same fingerprint
	assert.Equal(t, fp, Fingerprint("export.csv", 2048, modTime))

	assert.NotEqual(t, fp, Fingerprint("other.csv", 2048, modTime))
	assert.NotEqual(t, fp, Fingerprint("export.csv", 2049, modTime))
	assert.NotEqual(t, fp, Fingerprint("export.csv", 2048, modTime.Add(time.Second)))
}

func TestFingerprintFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,date\n"), 0644))

	fp, err := FingerprintFile(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, Fingerprint("export.csv", info.Size(), info.ModTime()), fp)

	_, err = FingerprintFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	_, err = FingerprintFile(dir)
	assert.Error(t, err, "directories cannot be fingerprinted")
}

func TestNewTracker_NilStore(t *testing.T) {
	tracker, err := NewTracker(nil)
	assert.Error(t, err)
	assert.Nil(t, tracker)
}

func TestTracker_ImportLifecycle(t *testing.T) {
	tracker, err := NewTracker(NewMemoryStore())
	require.NoError(t, err)

	modTime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	imported, err := tracker.HasBeenImported("export.csv", 2048, modTime)
	require.NoError(t, err)
	assert.False(t, imported)

	require.NoError(t, tracker.MarkImported("export.csv", 2048, modTime))

	imported, err = tracker.HasBeenImported("export.csv", 2048, modTime)
	require.NoError(t, err)
	assert.True(t, imported)

	// A touched file produces a different fingerprint and imports again
	imported, err = tracker.HasBeenImported("export.csv", 2048, modTime.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, imported)

	require.NoError(t, tracker.Forget("export.csv", 2048, modTime))
	imported, err = tracker.HasBeenImported("export.csv", 2048, modTime)
	require.NoError(t, err)
	assert.False(t, imported)
}

func TestTracker_ClearAndHistory(t *testing.T) {
	tracker, err := NewTracker(NewMemoryStore())
	require.NoError(t, err)

	modTime := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tracker.MarkImported("b.csv", 10, modTime))
	require.NoError(t, tracker.MarkImported("a.csv", 20, modTime))

	history, err := tracker.History()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0] < history[1], "history should be sorted")

	require.NoError(t, tracker.Clear())

	history, err = tracker.History()
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	has, err := store.Has("fp1")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.Add("fp1"))
	require.NoError(t, store.Add("fp1"), "duplicate add is a no-op")

	has, err = store.Has("fp1")
	require.NoError(t, err)
	assert.True(t, has)

	list, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"fp1"}, list)

	require.NoError(t, store.Remove("fp1"))
	has, err = store.Has("fp1")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.Close())
}
