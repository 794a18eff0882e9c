package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	// API
	APIPort int

	// Storage
	DataDir   string
	DBPath    string
	BackupDir string
	UploadDir string

	// Logging
	LogFile string
}

func Load() *Config {
	dataDir := getEnv("DATA_DIR", "./data")

	logFile := getEnv("LOG_FILE", "")
	if logFile == "" {
		logFile = filepath.Join(dataDir, "lintasbill.log")
		log.Println("LOG_FILE not set - logging to " + logFile)
	}

	return &Config{
		// API
		APIPort: getEnvInt("API_PORT", 8080),

		// Storage
		DataDir:   dataDir,
		DBPath:    filepath.Join(dataDir, "billing.db"),
		BackupDir: filepath.Join(dataDir, "backup"),
		UploadDir: filepath.Join(dataDir, "uploads"),

		// Logging
		LogFile: logFile,
	}
}

// EnsureDirs creates the data directories if they do not exist
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.BackupDir, c.UploadDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
