package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultByTable(result *RestoreResult) map[string]TableResult {
	byTable := make(map[string]TableResult, len(result.Tables))
	for _, tr := range result.Tables {
		byTable[tr.Table] = tr
	}
	return byTable
}

func copyTestFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0644))
}

func TestRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "billing.db")
	backupDir := filepath.Join(dir, "backup")
	seedLiveStore(t, dbPath)
	m := NewManager(dbPath, backupDir)

	created, err := m.Create()
	require.NoError(t, err)

	// mutate the live store after the backup
	db := openTestDB(t, dbPath)
	execAll(t, db,
		`DELETE FROM customers`,
		`INSERT INTO packages VALUES (9, 'Sementara', 1000)`,
	)
	db.Close()

	result, err := m.Restore(created.Filename)
	require.NoError(t, err)
	require.Len(t, result.Tables, len(RestoreTables))
	for _, tr := range result.Tables {
		assert.True(t, tr.Success, "table %s: %s", tr.Table, tr.Message)
	}
	assert.Equal(t, 7, result.TotalRestored)

	assert.Equal(t, 2, countRows(t, dbPath, "packages"))
	assert.Equal(t, 2, countRows(t, dbPath, "customers"))
	assert.Equal(t, 1, countRows(t, dbPath, "odps"))

	db = openTestDB(t, dbPath)
	defer db.Close()
	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM customers WHERE id = 1").Scan(&name))
	assert.Equal(t, "Budi", name)

	// scratch files were cleaned up
	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), "temp_restore_"), entry.Name())
	}
}

func TestRestoreMissingBackupLeavesStoreUntouched(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "billing.db")
	backupDir := filepath.Join(dir, "backup")
	seedLiveStore(t, dbPath)
	m := NewManager(dbPath, backupDir)

	_, err := m.Restore("billing_backup_2099-01-01T00-00-00.db")
	require.ErrorIs(t, err, ErrBackupNotFound)

	assert.Equal(t, 2, countRows(t, dbPath, "packages"))
	assert.Equal(t, 2, countRows(t, dbPath, "customers"))

	// not even a pre-restore snapshot is taken on that path
	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRestoreRecordsMissingTable(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "billing.db")
	backupDir := filepath.Join(dir, "backup")
	seedLiveStore(t, dbPath)
	m := NewManager(dbPath, backupDir)

	// a backup set that only carries the packages table
	backupName := "billing_backup_2025-01-01T00-00-00.db"
	bdb := openTestDB(t, filepath.Join(backupDir, backupName))
	execAll(t, bdb,
		`CREATE TABLE packages (id INTEGER PRIMARY KEY, name TEXT, price INTEGER)`,
		`INSERT INTO packages VALUES (5, 'Promo', 99000)`,
	)
	bdb.Close()

	result, err := m.Restore(backupName)
	require.NoError(t, err)
	byTable := resultByTable(result)

	assert.False(t, byTable["odps"].Success)
	assert.Equal(t, "table not found", byTable["odps"].Message)
	assert.Equal(t, 1, countRows(t, dbPath, "odps"))

	assert.True(t, byTable["packages"].Success)
	assert.Equal(t, 1, byTable["packages"].RowsRestored)
	assert.Equal(t, 1, countRows(t, dbPath, "packages"))
}

func TestRestoreProjectsOntoSharedColumns(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "billing.db")
	backupDir := filepath.Join(dir, "backup")
	seedLiveStore(t, dbPath)
	m := NewManager(dbPath, backupDir)

	// the backup carries a column the live schema no longer has
	backupName := "billing_backup_2025-01-01T00-00-00.db"
	bdb := openTestDB(t, filepath.Join(backupDir, backupName))
	execAll(t, bdb,
		`CREATE TABLE packages (id INTEGER PRIMARY KEY, name TEXT, price INTEGER, old_col TEXT)`,
		`INSERT INTO packages VALUES (7, 'Lama', 120000, 'legacy')`,
	)
	bdb.Close()

	result, err := m.Restore(backupName)
	require.NoError(t, err)
	byTable := resultByTable(result)
	require.True(t, byTable["packages"].Success, byTable["packages"].Message)
	assert.Equal(t, 1, byTable["packages"].RowsRestored)

	db := openTestDB(t, dbPath)
	defer db.Close()

	var name string
	var price int
	require.NoError(t, db.QueryRow("SELECT name, price FROM packages WHERE id = 7").Scan(&name, &price))
	assert.Equal(t, "Lama", name)
	assert.Equal(t, 120000, price)

	// old_col never appears in the live schema
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('packages') WHERE name = 'old_col'").Scan(&n))
	assert.Equal(t, 0, n)
}

func TestRestoreNoCompatibleColumnsEmptiesTable(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "billing.db")
	backupDir := filepath.Join(dir, "backup")
	seedLiveStore(t, dbPath)
	m := NewManager(dbPath, backupDir)

	backupName := "billing_backup_2025-01-01T00-00-00.db"
	bdb := openTestDB(t, filepath.Join(backupDir, backupName))
	execAll(t, bdb,
		`CREATE TABLE packages (kode TEXT, tarif INTEGER)`,
		`INSERT INTO packages VALUES ('X', 1)`,
	)
	bdb.Close()

	result, err := m.Restore(backupName)
	require.NoError(t, err)
	byTable := resultByTable(result)

	assert.False(t, byTable["packages"].Success)
	assert.Equal(t, "no compatible columns", byTable["packages"].Message)
	assert.Equal(t, 0, byTable["packages"].RowsRestored)
	assert.Equal(t, 0, countRows(t, dbPath, "packages"))
}

func TestRestoreSkipsRowsFailingLiveConstraints(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "billing.db")
	backupDir := filepath.Join(dir, "backup")
	m := NewManager(dbPath, backupDir)

	// the live schema is stricter than the backup's: NULL names must not insert
	db := openTestDB(t, dbPath)
	execAll(t, db,
		`CREATE TABLE packages (id INTEGER PRIMARY KEY, name TEXT NOT NULL, price INTEGER)`,
		`CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE odps (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE cable_routes (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE network_segments (id INTEGER PRIMARY KEY, name TEXT)`,
	)
	db.Close()

	backupName := "billing_backup_2025-01-01T00-00-00.db"
	bdb := openTestDB(t, filepath.Join(backupDir, backupName))
	execAll(t, bdb,
		`CREATE TABLE packages (id INTEGER PRIMARY KEY, name TEXT, price INTEGER)`,
		`INSERT INTO packages VALUES (1, 'Home 10M', 150000), (2, NULL, 0), (3, 'Home 20M', 250000)`,
	)
	bdb.Close()

	result, err := m.Restore(backupName)
	require.NoError(t, err)
	byTable := resultByTable(result)

	assert.True(t, byTable["packages"].Success)
	assert.Equal(t, 2, byTable["packages"].RowsRestored)
	assert.Equal(t, 1, byTable["packages"].RowsSkipped)
	assert.Equal(t, "restored 2 rows, skipped 1", byTable["packages"].Message)
	assert.Equal(t, 2, result.TotalRestored)
	assert.Equal(t, 2, countRows(t, dbPath, "packages"))
}

func TestRestoreEmptySourceTable(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "billing.db")
	backupDir := filepath.Join(dir, "backup")
	seedLiveStore(t, dbPath)
	m := NewManager(dbPath, backupDir)

	backupName := "billing_backup_2025-01-01T00-00-00.db"
	bdb := openTestDB(t, filepath.Join(backupDir, backupName))
	execAll(t, bdb, `CREATE TABLE packages (id INTEGER PRIMARY KEY, name TEXT, price INTEGER)`)
	bdb.Close()

	result, err := m.Restore(backupName)
	require.NoError(t, err)
	byTable := resultByTable(result)

	assert.True(t, byTable["packages"].Success)
	assert.Equal(t, 0, byTable["packages"].RowsRestored)
	assert.Equal(t, "restored 0 rows", byTable["packages"].Message)
	assert.Equal(t, 0, countRows(t, dbPath, "packages"))
}

func TestRestoreMergesBackupWAL(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "billing.db")
	backupDir := filepath.Join(dir, "backup")
	seedLiveStore(t, dbPath)
	m := NewManager(dbPath, backupDir)

	// build a WAL-mode source whose rows only exist in the log, then copy
	// the files while the connection is still open so the log survives
	srcPath := filepath.Join(dir, "source.db")
	src := openTestDB(t, srcPath)
	src.SetMaxOpenConns(1)
	execAll(t, src,
		`PRAGMA journal_mode=WAL`,
		`PRAGMA wal_autocheckpoint=0`,
		`CREATE TABLE packages (id INTEGER PRIMARY KEY, name TEXT, price INTEGER)`,
		`INSERT INTO packages VALUES (11, 'Arsip', 175000)`,
	)

	base := "billing_backup_2025-03-01T00-00-00"
	copyTestFile(t, srcPath, filepath.Join(backupDir, base+".db"))
	copyTestFile(t, srcPath+"-wal", filepath.Join(backupDir, base+".db-wal"))
	src.Close()

	result, err := m.Restore(base + ".db")
	require.NoError(t, err)
	byTable := resultByTable(result)
	require.True(t, byTable["packages"].Success, byTable["packages"].Message)
	assert.Equal(t, 1, byTable["packages"].RowsRestored)

	db := openTestDB(t, dbPath)
	defer db.Close()
	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM packages WHERE id = 11").Scan(&name))
	assert.Equal(t, "Arsip", name)
}

func TestRestoreWritesPreRestoreSnapshot(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "billing.db")
	backupDir := filepath.Join(dir, "backup")
	seedLiveStore(t, dbPath)
	m := NewManager(dbPath, backupDir)

	created, err := m.Create()
	require.NoError(t, err)

	// the snapshot must capture this row even though the restore removes it
	db := openTestDB(t, dbPath)
	execAll(t, db, `INSERT INTO packages VALUES (9, 'Sementara', 1000)`)
	db.Close()

	result, err := m.Restore(created.Filename)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.PreRestoreFile, "pre_restore_"), result.PreRestoreFile)

	snapshot := filepath.Join(backupDir, result.PreRestoreFile)
	assert.Equal(t, 3, countRows(t, snapshot, "packages"))
	assert.Equal(t, 2, countRows(t, dbPath, "packages"))
}
