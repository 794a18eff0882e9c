// Package backup implements selective backup and restore for the SQLite
// store: whole-file backup sets with WAL sidecars, and table-level restore
// that projects rows onto the column intersection of both schemas.
package backup

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const timestampLayout = "2006-01-02T15-04-05"

// siblingSuffixes are the side files SQLite keeps next to a WAL-mode database
var siblingSuffixes = []string{"-wal", "-shm"}

// Manager performs backup and restore operations against one live store.
// Every operation opens its own short-lived connections; nothing is shared
// across calls.
type Manager struct {
	dbPath    string
	backupDir string
}

func NewManager(dbPath, backupDir string) *Manager {
	os.MkdirAll(backupDir, 0755)
	return &Manager{
		dbPath:    dbPath,
		backupDir: backupDir,
	}
}

// BackupFile describes one written member of a backup set
type BackupFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// BackupResult reports a completed backup run
type BackupResult struct {
	BaseName  string       `json:"base_name"`
	Filename  string       `json:"filename"`
	Files     []BackupFile `json:"files"`
	TotalSize int64        `json:"total_size"`
	Warnings  []string     `json:"warnings,omitempty"`
}

// Create produces a new timestamped backup set: checkpoint the live store,
// then copy the main file plus any WAL/shared-memory siblings still on disk.
// A failed checkpoint downgrades to a warning; the copy proceeds because the
// sibling files are captured alongside.
func (m *Manager) Create() (*BackupResult, error) {
	timestamp := time.Now().Format(timestampLayout)
	base := fmt.Sprintf("billing_backup_%s", timestamp)

	result := &BackupResult{
		BaseName: base,
		Filename: base + ".db",
	}

	if err := checkpoint(m.dbPath); err != nil {
		log.Printf("Backup: checkpoint failed: %v", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("checkpoint failed: %v", err))
	}

	size, err := copyFile(m.dbPath, filepath.Join(m.backupDir, base+".db"))
	if err != nil {
		return nil, fmt.Errorf("failed to copy database: %v", err)
	}
	result.Files = append(result.Files, BackupFile{Name: base + ".db", Size: size})
	result.TotalSize += size

	for _, suffix := range siblingSuffixes {
		src := m.dbPath + suffix
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		name := base + ".db" + suffix
		size, err := copyFile(src, filepath.Join(m.backupDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to copy %s: %v", filepath.Base(src), err)
		}
		result.Files = append(result.Files, BackupFile{Name: name, Size: size})
		result.TotalSize += size
	}

	log.Printf("Backup: created %s (%d files, %d bytes)", base, len(result.Files), result.TotalSize)
	return result, nil
}

// checkpoint folds pending WAL content into the main database file. The
// connection is scoped to this call and closed before any byte-level copy.
// mode=rw keeps the driver from creating an empty database when the path
// does not exist.
func checkpoint(dbPath string) error {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=rw&_busy_timeout=5000", dbPath))
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	size, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return 0, err
	}
	return size, out.Close()
}
