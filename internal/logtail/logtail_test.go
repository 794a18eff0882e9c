package logtail

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, lines string) *Reader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api.log")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0644))
	return NewReader(path)
}

func TestTailReturnsNewestFirst(t *testing.T) {
	r := writeLog(t, ""+
		"2025/08/25 10:00:00 Server: listening on :8080\n"+
		"2025/08/25 10:01:00 Backup: created billing_backup_2025-08-25T10-01-00 (1 files, 4096 bytes)\n"+
		"2025/08/25 10:02:00 Restore: completed, 7 rows restored\n")

	entries, err := r.Tail(10, "", "")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Contains(t, entries[0].Message, "Restore: completed")
	assert.Contains(t, entries[2].Message, "Server: listening")
	assert.Equal(t, "2025-08-25 10:02:00", entries[0].Time)
	assert.Equal(t, "info", entries[0].Level)
}

func TestTailHonorsLimit(t *testing.T) {
	r := writeLog(t, ""+
		"2025/08/25 10:00:00 first\n"+
		"2025/08/25 10:01:00 second\n"+
		"2025/08/25 10:02:00 third\n"+
		"2025/08/25 10:03:00 fourth\n")

	entries, err := r.Tail(2, "", "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "fourth", entries[0].Message)
	assert.Equal(t, "third", entries[1].Message)
}

func TestTailFiltersByLevel(t *testing.T) {
	r := writeLog(t, ""+
		"2025/08/25 10:00:00 Backup: checkpoint failed: disk I/O error\n"+
		"2025/08/25 10:01:00 Backup: created billing_backup_x (1 files, 10 bytes)\n")

	entries, err := r.Tail(10, "error", "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "checkpoint failed")
	assert.Equal(t, "error", entries[0].Level)
}

func TestTailFiltersBySearch(t *testing.T) {
	r := writeLog(t, ""+
		"2025/08/25 10:00:00 Restore: table packages restored 2 rows\n"+
		"2025/08/25 10:01:00 Server: listening on :8080\n")

	entries, err := r.Tail(10, "", "PACKAGES")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "packages")
}

func TestTailKeepsMalformedLinesAsRaw(t *testing.T) {
	r := writeLog(t, ""+
		"not a timestamped line\n"+
		"2025/08/25 10:00:00 normal line\n")

	entries, err := r.Tail(10, "", "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "", entries[1].Time)
	assert.Equal(t, "not a timestamped line", entries[1].Message)
}

func TestTailMissingFileIsEmpty(t *testing.T) {
	r := NewReader(filepath.Join(t.TempDir(), "absent.log"))
	entries, err := r.Tail(10, "", "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
