package backup

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// BackupSet is one catalog entry: the sibling files sharing a base name
type BackupSet struct {
	BaseName  string    `json:"base_name"`
	Filename  string    `json:"filename"`
	TotalSize int64     `json:"total_size"`
	FileCount int       `json:"file_count"`
	CreatedAt time.Time `json:"created_at"`
	Files     []string  `json:"files"`
}

// List enumerates the backup directory and groups files into sets by base
// name. Creation time is the earliest modification time among a set's
// members; entries come back newest first.
func (m *Manager) List() ([]BackupSet, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupSet{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %v", err)
	}

	groups := make(map[string]*BackupSet)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base, ok := splitBackupName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		set, found := groups[base]
		if !found {
			set = &BackupSet{
				BaseName:  base,
				Filename:  base + ".db",
				CreatedAt: info.ModTime(),
			}
			groups[base] = set
		}
		set.Files = append(set.Files, entry.Name())
		set.FileCount++
		set.TotalSize += info.Size()
		if info.ModTime().Before(set.CreatedAt) {
			set.CreatedAt = info.ModTime()
		}
	}

	sets := make([]BackupSet, 0, len(groups))
	for _, set := range groups {
		sets = append(sets, *set)
	}
	sort.Slice(sets, func(i, j int) bool {
		return sets[i].CreatedAt.After(sets[j].CreatedAt)
	})
	return sets, nil
}

// splitBackupName strips a recognized suffix and returns the shared base
// name.
func splitBackupName(name string) (string, bool) {
	for _, suffix := range []string{".db-wal", ".db-shm", ".db"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix), true
		}
	}
	return "", false
}
