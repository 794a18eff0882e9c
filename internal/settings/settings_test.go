package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, store.Load())

	assert.Equal(t, "LintasBill", store.GetString("company_name"))
	assert.Equal(t, "21", store.GetString("ftp_port"))
	assert.False(t, store.GetBool("ftp_enabled"))
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"company_name": "Maju Net", "ftp_enabled": true}`), 0644))

	store := NewStore(path)
	require.NoError(t, store.Load())

	assert.Equal(t, "Maju Net", store.GetString("company_name"))
	assert.True(t, store.GetBool("ftp_enabled"))
	// keys the file does not mention keep their defaults
	assert.Equal(t, "isolir", store.GetString("isolation_profile"))
}

func TestUpdateMergesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store := NewStore(path)
	require.NoError(t, store.Load())

	require.NoError(t, store.Update(map[string]interface{}{
		"company_name": "Lintas Jaya",
		"ftp_host":     "backup.lintasjaya.net.id",
	}))

	// a fresh store sees the merged state from disk
	reloaded := NewStore(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, "Lintas Jaya", reloaded.GetString("company_name"))
	assert.Equal(t, "backup.lintasjaya.net.id", reloaded.GetString("ftp_host"))
	assert.Equal(t, "/backups", reloaded.GetString("ftp_dir"))
}

func TestUpdateSkipsEmptyKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store := NewStore(path)
	require.NoError(t, store.Load())

	require.NoError(t, store.Update(map[string]interface{}{"": "ignored", "company_phone": "021-555"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	stored := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(raw, &stored))
	_, hasEmpty := stored[""]
	assert.False(t, hasEmpty)
	assert.Equal(t, "021-555", stored["company_phone"])
}

func TestGetBoolAcceptsLegacyStrings(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, store.Load())

	require.NoError(t, store.Set("ftp_enabled", "1"))
	assert.True(t, store.GetBool("ftp_enabled"))

	require.NoError(t, store.Set("ftp_enabled", "false"))
	assert.False(t, store.GetBool("ftp_enabled"))
}

func TestAllReturnsCopy(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, store.Load())

	all := store.All()
	all["company_name"] = "mutated"
	assert.Equal(t, "LintasBill", store.GetString("company_name"))
}
