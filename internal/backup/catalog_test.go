package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBackupFile(t *testing.T, dir, name string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), bytes.Repeat([]byte{0}, size), 0644))
}

func TestListGroupsSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backup")
	m := NewManager(filepath.Join(dir, "billing.db"), backupDir)

	writeBackupFile(t, backupDir, "billing_backup_2025-01-01T00-00-00.db", 100)
	writeBackupFile(t, backupDir, "billing_backup_2025-01-01T00-00-00.db-wal", 50)
	writeBackupFile(t, backupDir, "billing_backup_2025-01-01T00-00-00.db-shm", 25)
	writeBackupFile(t, backupDir, "billing_backup_2025-01-02T00-00-00.db", 10)
	writeBackupFile(t, backupDir, "notes.txt", 5)

	sets, err := m.List()
	require.NoError(t, err)
	require.Len(t, sets, 2)

	byBase := make(map[string]BackupSet, len(sets))
	for _, set := range sets {
		byBase[set.BaseName] = set
	}

	full := byBase["billing_backup_2025-01-01T00-00-00"]
	assert.Equal(t, "billing_backup_2025-01-01T00-00-00.db", full.Filename)
	assert.Equal(t, 3, full.FileCount)
	assert.Equal(t, int64(175), full.TotalSize)
	assert.Len(t, full.Files, 3)

	single := byBase["billing_backup_2025-01-02T00-00-00"]
	assert.Equal(t, 1, single.FileCount)
	assert.Equal(t, int64(10), single.TotalSize)
}

func TestListSortsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backup")
	m := NewManager(filepath.Join(dir, "billing.db"), backupDir)

	older := "billing_backup_2025-01-15T00-00-00.db"
	newer := "billing_backup_2025-02-15T00-00-00.db"
	writeBackupFile(t, backupDir, older, 10)
	writeBackupFile(t, backupDir, newer, 10)

	now := time.Now()
	require.NoError(t, os.Chtimes(filepath.Join(backupDir, older), now.Add(-2*time.Hour), now.Add(-2*time.Hour)))
	require.NoError(t, os.Chtimes(filepath.Join(backupDir, newer), now.Add(-time.Hour), now.Add(-time.Hour)))

	sets, err := m.List()
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, "billing_backup_2025-02-15T00-00-00", sets[0].BaseName)
	assert.Equal(t, "billing_backup_2025-01-15T00-00-00", sets[1].BaseName)
}

func TestListEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backup")
	m := NewManager(filepath.Join(dir, "billing.db"), backupDir)

	sets, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, sets)

	// a missing directory reads as an empty catalog, not an error
	require.NoError(t, os.RemoveAll(backupDir))
	sets, err = m.List()
	require.NoError(t, err)
	assert.Empty(t, sets)
}
