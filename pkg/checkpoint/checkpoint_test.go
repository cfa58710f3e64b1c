package checkpoint

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	crawlerrors "postcrawler/pkg/errors"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(filepath.Join(t.TempDir(), "scraping_checkpoint.json"))
}

func TestLoadMissingReturnsNil(t *testing.T) {
	mgr := newTestManager(t)

	cp, err := mgr.Load()
	require.NoError(t, err)
	assert.Nil(t, cp)
	assert.False(t, mgr.Exists())
}

func TestNewCheckpointDefaults(t *testing.T) {
	cp := New()

	assert.Nil(t, cp.OlderThan)
	assert.True(t, cp.IsFirstPost)
	assert.Equal(t, 0, cp.PostCounter)
	assert.Equal(t, "", cp.Cursor())
	assert.False(t, cp.StreamStarted())
}

func TestSaveAndLoad(t *testing.T) {
	mgr := newTestManager(t)

	cp := New()
	cp.Advance(20, "1700000000")
	require.NoError(t, mgr.Save(cp))
	assert.True(t, mgr.Exists())

	loaded, err := mgr.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "1700000000", loaded.Cursor())
	assert.Equal(t, 20, loaded.PostCounter)
	assert.True(t, loaded.StreamStarted())
}

func TestSaveUsesCompatibleFieldNames(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.Save(New()))

	data, err := os.ReadFile(mgr.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"olderThan":null,"isFirstPost":true,"postCounter":0}`, string(data))
}

func TestLoadExistingFile(t *testing.T) {
	mgr := newTestManager(t)
	content := `{"olderThan":"1699990000","isFirstPost":false,"postCounter":40}`
	require.NoError(t, os.WriteFile(mgr.Path(), []byte(content), 0644))

	cp, err := mgr.Load()
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, "1699990000", cp.Cursor())
	assert.Equal(t, 40, cp.PostCounter)
	assert.False(t, cp.IsFirstPost)
}

func TestLoadCorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated json", `{"olderThan":"17`},
		{"negative count", `{"olderThan":null,"isFirstPost":true,"postCounter":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := newTestManager(t)
			require.NoError(t, os.WriteFile(mgr.Path(), []byte(tt.content), 0644))

			cp, err := mgr.Load()
			assert.Nil(t, cp)
			assert.True(t, crawlerrors.IsType(err, crawlerrors.ErrorTypePersistence))
		})
	}
}

func TestSaveIsRepeatableAndLeavesNoTempFiles(t *testing.T) {
	mgr := newTestManager(t)
	cp := New()

	for i := 0; i < 5; i++ {
		cp.Advance(2, strconv.Itoa(1700000009-i))
		require.NoError(t, mgr.Save(cp))
	}

	entries, err := os.ReadDir(filepath.Dir(mgr.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "scraping_checkpoint.json", entries[0].Name())

	loaded, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.PostCounter)
	assert.Equal(t, "1700000005", loaded.Cursor())
}

func TestSaveCreatesDirectory(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "state", "nested", "cp.json"))
	require.NoError(t, mgr.Save(New()))
	assert.True(t, mgr.Exists())
}

func TestSaveFailureIsPersistenceError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	mgr := NewManager(filepath.Join(blocker, "cp.json"))
	err := mgr.Save(New())
	require.Error(t, err)
	assert.True(t, crawlerrors.IsType(err, crawlerrors.ErrorTypePersistence))
}

func TestDelete(t *testing.T) {
	mgr := newTestManager(t)

	// Absent file is fine.
	require.NoError(t, mgr.Delete())

	require.NoError(t, mgr.Save(New()))
	require.NoError(t, mgr.Delete())
	assert.False(t, mgr.Exists())
}

func TestInfo(t *testing.T) {
	mgr := newTestManager(t)

	info, err := mgr.Info()
	require.NoError(t, err)
	assert.Nil(t, info)

	cp := New()
	cp.Advance(3, "1700000100")
	require.NoError(t, mgr.Save(cp))

	info, err = mgr.Info()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, mgr.Path(), info.Path)
	assert.Equal(t, "1700000100", info.Cursor)
	assert.Equal(t, 3, info.RecordCount)
	assert.True(t, info.StreamStarted)
	assert.False(t, info.UpdatedAt.IsZero())
	assert.GreaterOrEqual(t, info.Age().Nanoseconds(), int64(0))
}

func TestAdvanceWithEmptyPageKeepsStreamState(t *testing.T) {
	cp := New()
	cp.Advance(0, "1700000000")

	assert.True(t, cp.IsFirstPost)
	assert.Equal(t, 0, cp.PostCounter)
	assert.Equal(t, "1700000000", cp.Cursor())
}
