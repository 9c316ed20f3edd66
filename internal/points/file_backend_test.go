package points

import (
	json "github.com/goccy/go-json"
	"os"
	"path/filepath"
	"pointsd/internal/models"
	"pointsd/internal/structures"
	"pointsd/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backendConfig(path string) *structures.Config {
	return &structures.Config{
		Persistence: structures.Persistence{FilePath: path},
	}
}

func testUsers() map[string]*models.LedgerEntry {
	return map[string]*models.LedgerEntry{
		"alice": {Total: 150, Daily: map[string]int{"2026-03-13": 100, "2026-03-14": 50}},
		"bob":   {Total: 7, Daily: map[string]int{"2026-03-14": 7}},
	}
}

func TestFileBackend_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.dat")

	comp, err := NewZstdCompressor()
	require.NoError(t, err)
	defer comp.Close()

	fb := NewFileBackend(backendConfig(path), comp, &testutil.MockLogger{})

	require.NoError(t, fb.Save(testUsers()))

	loaded, err := fb.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, 150, loaded["alice"].Total)
	assert.Equal(t, 50, loaded["alice"].Daily["2026-03-14"])
	assert.Equal(t, 7, loaded["bob"].Total)
}

func TestFileBackend_LoadMissingFileReturnsEmpty(t *testing.T) {
	fb := NewFileBackend(backendConfig("/nonexistent/dir/ledger.dat"), &testutil.MockCompressor{}, &testutil.MockLogger{})

	loaded, err := fb.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.NotNil(t, loaded)
}

func TestFileBackend_LoadCorruptFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.dat")
	require.NoError(t, os.WriteFile(path, []byte("not a ledger"), 0644))

	fb := NewFileBackend(backendConfig(path), &testutil.MockCompressor{}, &testutil.MockLogger{})

	_, err := fb.Load()
	assert.Error(t, err)
}

func TestFileBackend_MigratesLegacyBareMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.dat")

	// Old deployments wrote the user map directly, uncompressed.
	legacy := map[string]*models.LedgerEntry{
		"alice": {Total: 42, Daily: map[string]int{"2026-03-14": 42}},
	}
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0644))

	comp, err := NewZstdCompressor()
	require.NoError(t, err)
	defer comp.Close()

	fb := NewFileBackend(backendConfig(path), comp, &testutil.MockLogger{})

	loaded, err := fb.Load()
	require.NoError(t, err)
	require.Contains(t, loaded, "alice")
	assert.Equal(t, 42, loaded["alice"].Total)
}

func TestFileBackend_LoadNormalizesPartialEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.dat")

	raw, err := json.Marshal(models.Ledger{
		Version: models.LedgerFormatVersion,
		Users: map[string]*models.LedgerEntry{
			"alice": {Total: 10},
			"null":  nil,
			"":      {Total: 1},
		},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0644))

	fb := NewFileBackend(backendConfig(path), &testutil.MockCompressor{}, &testutil.MockLogger{})

	loaded, err := fb.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Contains(t, loaded, "alice")
	assert.NotNil(t, loaded["alice"].Daily)
}

func TestFileBackend_SaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.dat")

	fb := NewFileBackend(backendConfig(path), &testutil.MockCompressor{}, &testutil.MockLogger{})

	require.NoError(t, fb.Save(testUsers()))

	_, err := os.Stat(path)
	assert.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not survive a save")
}

func TestFileBackend_SaveOverwritesPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.dat")

	fb := NewFileBackend(backendConfig(path), &testutil.MockCompressor{}, &testutil.MockLogger{})

	require.NoError(t, fb.Save(testUsers()))
	require.NoError(t, fb.Save(map[string]*models.LedgerEntry{
		"carol": {Total: 1, Daily: map[string]int{"2026-03-14": 1}},
	}))

	loaded, err := fb.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Contains(t, loaded, "carol")
}
