package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrBackupNotFound is returned when the named backup artifact is missing
var ErrBackupNotFound = errors.New("backup file not found")

// RestoreTables is the fixed allow-list of tables eligible for selective
// restore, in dependency order. Only names from this list ever reach SQL
// statement construction.
var RestoreTables = []string{"packages", "customers", "odps", "cable_routes", "network_segments"}

func isRestorable(table string) bool {
	for _, t := range RestoreTables {
		if t == table {
			return true
		}
	}
	return false
}

// TableResult reports the outcome of restoring one table
type TableResult struct {
	Table        string `json:"table"`
	Success      bool   `json:"success"`
	RowsRestored int    `json:"rows_restored"`
	RowsSkipped  int    `json:"rows_skipped"`
	Message      string `json:"message"`
}

// RestoreResult reports a completed restore run
type RestoreResult struct {
	Tables         []TableResult `json:"tables"`
	TotalRestored  int           `json:"total_restored"`
	PreRestoreFile string        `json:"pre_restore_file"`
	Warnings       []string      `json:"warnings,omitempty"`
}

// Restore repopulates the allow-listed tables from the named backup set.
// The live store is snapshotted first, the set is staged to scratch files
// and its WAL folded in, then each table is copied row by row inside its
// own transaction, projected onto the column intersection of both schemas.
// Tables are never rolled back once their transaction commits; a failure
// while staging aborts before any table is touched.
func (m *Manager) Restore(filename string) (*RestoreResult, error) {
	filename = filepath.Base(filename)
	backupPath := filepath.Join(m.backupDir, filename)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, filename)
	}

	timestamp := time.Now().Format(timestampLayout)
	result := &RestoreResult{}

	// Safety snapshot of the live store before anything is touched
	if err := checkpoint(m.dbPath); err != nil {
		log.Printf("Restore: pre-restore checkpoint failed: %v", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("pre-restore checkpoint failed: %v", err))
	}
	preRestore := fmt.Sprintf("pre_restore_%s.db", timestamp)
	if _, err := copyFile(m.dbPath, filepath.Join(m.backupDir, preRestore)); err != nil {
		return nil, fmt.Errorf("failed to create pre-restore snapshot: %v", err)
	}
	result.PreRestoreFile = preRestore

	// Stage the chosen set under scratch names so the originals stay immutable
	scratch := filepath.Join(m.backupDir, fmt.Sprintf("temp_restore_%s.db", timestamp))
	defer removeScratch(scratch)

	if _, err := copyFile(backupPath, scratch); err != nil {
		return nil, fmt.Errorf("failed to stage backup copy: %v", err)
	}
	hasWAL := false
	for _, suffix := range siblingSuffixes {
		src := backupPath + suffix
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if _, err := copyFile(src, scratch+suffix); err != nil {
			return nil, fmt.Errorf("failed to stage %s: %v", filepath.Base(src), err)
		}
		if suffix == "-wal" {
			hasWAL = true
		}
	}

	// Fold the staged WAL into the staged main file before reading from it
	if hasWAL {
		if err := checkpoint(scratch); err != nil {
			log.Printf("Restore: scratch checkpoint failed: %v", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("scratch checkpoint failed: %v", err))
		}
	}

	src, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=rw&_busy_timeout=5000", scratch))
	if err != nil {
		return nil, fmt.Errorf("failed to open staged backup: %v", err)
	}
	defer src.Close()

	dst, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=rw&_busy_timeout=5000", m.dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open live database: %v", err)
	}
	defer dst.Close()

	for _, table := range RestoreTables {
		tr := restoreTable(src, dst, table)
		result.Tables = append(result.Tables, tr)
		result.TotalRestored += tr.RowsRestored
	}

	log.Printf("Restore: completed from %s, %d rows restored", filename, result.TotalRestored)
	return result, nil
}

// restoreTable copies one table from src into dst. The delete and all
// inserts share one transaction, so a crash cannot leave the table half
// written. Every failure is recorded on the result instead of propagating,
// which lets the remaining tables proceed.
func restoreTable(src, dst *sql.DB, table string) TableResult {
	tr := TableResult{Table: table}

	if !isRestorable(table) {
		tr.Message = "table not allowed"
		return tr
	}

	exists, err := tableExists(src, table)
	if err != nil {
		tr.Message = fmt.Sprintf("failed to inspect backup schema: %v", err)
		return tr
	}
	if !exists {
		tr.Message = "table not found"
		return tr
	}

	tx, err := dst.Begin()
	if err != nil {
		tr.Message = fmt.Sprintf("failed to begin transaction: %v", err)
		return tr
	}

	if _, err := tx.Exec("DELETE FROM " + table); err != nil {
		tx.Rollback()
		tr.Message = fmt.Sprintf("failed to clear table: %v", err)
		return tr
	}

	srcCols, data, scanErrs, err := readAllRows(src, table)
	if err != nil {
		tx.Rollback()
		tr.Message = fmt.Sprintf("failed to read backup rows: %v", err)
		return tr
	}
	tr.RowsSkipped += scanErrs

	if len(data) == 0 && scanErrs == 0 {
		if err := tx.Commit(); err != nil {
			tr.Message = fmt.Sprintf("failed to commit: %v", err)
			return tr
		}
		tr.Success = true
		tr.Message = "restored 0 rows"
		return tr
	}

	dstCols, err := tableColumns(dst, table)
	if err != nil {
		tx.Rollback()
		tr.Message = fmt.Sprintf("failed to read live schema: %v", err)
		return tr
	}

	srcIdx, insertCols := intersectColumns(srcCols, dstCols)
	if len(insertCols) == 0 {
		// the delete above stands: the table ends empty
		if err := tx.Commit(); err != nil {
			tr.Message = fmt.Sprintf("failed to commit: %v", err)
			return tr
		}
		tr.Message = "no compatible columns"
		return tr
	}

	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		table, strings.Join(insertCols, ", "), placeholders(len(insertCols)),
	))
	if err != nil {
		tx.Rollback()
		tr.Message = fmt.Sprintf("failed to prepare insert: %v", err)
		return tr
	}
	defer stmt.Close()

	for _, vals := range data {
		args := make([]interface{}, len(srcIdx))
		for i, idx := range srcIdx {
			args[i] = vals[idx]
		}
		if _, err := stmt.Exec(args...); err != nil {
			tr.RowsSkipped++
			continue
		}
		tr.RowsRestored++
	}

	if err := tx.Commit(); err != nil {
		tr.RowsRestored = 0
		tr.Message = fmt.Sprintf("failed to commit: %v", err)
		return tr
	}

	tr.Success = true
	if tr.RowsSkipped > 0 {
		tr.Message = fmt.Sprintf("restored %d rows, skipped %d", tr.RowsRestored, tr.RowsSkipped)
	} else {
		tr.Message = fmt.Sprintf("restored %d rows", tr.RowsRestored)
	}
	return tr
}

// readAllRows fetches every row of the table into memory. Scan failures are
// counted, not fatal, matching the per-row skip semantics of the insert loop.
func readAllRows(db *sql.DB, table string) ([]string, [][]interface{}, int, error) {
	rows, err := db.Query("SELECT * FROM " + table)
	if err != nil {
		return nil, nil, 0, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, 0, err
	}

	var data [][]interface{}
	scanErrs := 0
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			scanErrs++
			continue
		}
		data = append(data, vals)
	}
	return cols, data, scanErrs, rows.Err()
}

func tableExists(db *sql.DB, table string) (bool, error) {
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func tableColumns(db *sql.DB, table string) ([]string, error) {
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// intersectColumns matches source against destination column names
// case-insensitively. It returns the source value indexes to project and the
// destination-side names to insert into, in source column order.
func intersectColumns(srcCols, dstCols []string) ([]int, []string) {
	byLower := make(map[string]string, len(dstCols))
	for _, c := range dstCols {
		byLower[strings.ToLower(c)] = c
	}

	var idx []int
	var cols []string
	for i, c := range srcCols {
		if dstName, ok := byLower[strings.ToLower(c)]; ok {
			idx = append(idx, i)
			cols = append(cols, dstName)
		}
	}
	return idx, cols
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func removeScratch(scratch string) {
	for _, suffix := range append([]string{""}, siblingSuffixes...) {
		if err := os.Remove(scratch + suffix); err != nil && !os.IsNotExist(err) {
			log.Printf("Restore: failed to remove scratch file %s: %v", scratch+suffix, err)
		}
	}
}
