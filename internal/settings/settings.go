// Package settings persists application preferences as a flat JSON file.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Defaults returns the baseline preferences applied when no settings file
// exists yet. Update only ever adds or overwrites keys, so defaults survive
// partial writes from the frontend.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"company_name":         "LintasBill",
		"company_address":      "",
		"company_phone":        "",
		"company_logo":         "",
		"invoice_footer":       "Terima kasih atas pembayaran Anda",
		"whatsapp_gateway_url": "",
		"whatsapp_api_key":     "",
		"whatsapp_group_id":    "",
		"ftp_enabled":          false,
		"ftp_host":             "",
		"ftp_port":             "21",
		"ftp_user":             "",
		"ftp_password":         "",
		"ftp_dir":              "/backups",
		"isolation_profile":    "isolir",
		"pppoe_local_address":  "10.10.0.1",
	}
}

// Store is a mutex-guarded view over the settings file. All mutations go
// through Update/Set so the file on disk never lags the in-memory state.
type Store struct {
	mu   sync.RWMutex
	path string
	data map[string]interface{}
}

func NewStore(path string) *Store {
	return &Store{path: path, data: Defaults()}
}

// Load reads the settings file, layering stored values over the defaults.
// A missing file is not an error; the defaults stand until the first Update.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read settings file: %v", err)
	}

	stored := make(map[string]interface{})
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("failed to parse settings file: %v", err)
	}

	for key, value := range stored {
		s.data[key] = value
	}
	return nil
}

// All returns a copy of every preference.
func (s *Store) All() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]interface{}, len(s.data))
	for key, value := range s.data {
		out[key] = value
	}
	return out
}

// GetString returns the preference as a string, or "" when unset.
func (s *Store) GetString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok || value == nil {
		return ""
	}
	if str, ok := value.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", value)
}

// GetBool returns the preference as a bool. String values "true" and "1"
// count as true so toggles saved by older frontends keep working.
func (s *Store) GetBool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch value := s.data[key].(type) {
	case bool:
		return value
	case string:
		return value == "true" || value == "1"
	default:
		return false
	}
}

// Update shallow-merges the given keys over the current state and writes the
// result to disk. Keys absent from the request are left untouched.
func (s *Store) Update(partial map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range partial {
		if key == "" {
			continue
		}
		s.data[key] = value
	}
	return s.save()
}

// Set updates a single preference and persists it.
func (s *Store) Set(key string, value interface{}) error {
	return s.Update(map[string]interface{}{key: value})
}

// save writes the full map to a temp file and renames it into place, so a
// crash mid-write never leaves a truncated settings file. Callers hold mu.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %v", err)
	}

	tmp := filepath.Join(filepath.Dir(s.path), ".settings.json.tmp")
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %v", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace settings file: %v", err)
	}
	return nil
}
