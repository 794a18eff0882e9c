package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/lintasbill/backend/internal/backup"
	"github.com/lintasbill/backend/internal/settings"
)

// OffsiteUploader mirrors finished backup sets to an FTP server when offsite
// storage is enabled in settings.
type OffsiteUploader struct {
	settings  *settings.Store
	backupDir string
}

func NewOffsiteUploader(store *settings.Store, backupDir string) *OffsiteUploader {
	return &OffsiteUploader{settings: store, backupDir: backupDir}
}

type ftpConfig struct {
	host     string
	port     int
	user     string
	password string
	dir      string
}

// config returns nil when offsite storage is disabled or incomplete.
func (u *OffsiteUploader) config() *ftpConfig {
	if !u.settings.GetBool("ftp_enabled") {
		return nil
	}
	host := u.settings.GetString("ftp_host")
	if host == "" {
		return nil
	}
	port, err := strconv.Atoi(u.settings.GetString("ftp_port"))
	if err != nil || port <= 0 {
		port = 21
	}
	return &ftpConfig{
		host:     host,
		port:     port,
		user:     u.settings.GetString("ftp_user"),
		password: u.settings.GetString("ftp_password"),
		dir:      u.settings.GetString("ftp_dir"),
	}
}

// UploadBackupSet copies every file of a fresh backup set to the FTP server.
// Offsite failures never fail the backup; they come back as warnings for the
// caller to surface.
func (u *OffsiteUploader) UploadBackupSet(result *backup.BackupResult) []string {
	cfg := u.config()
	if cfg == nil {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", cfg.host, cfg.port)
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return u.warn(fmt.Sprintf("offsite upload skipped: connection failed: %v", err))
	}
	defer conn.Quit()

	if err := conn.Login(cfg.user, cfg.password); err != nil {
		return u.warn(fmt.Sprintf("offsite upload skipped: login failed: %v", err))
	}

	if cfg.dir != "" && cfg.dir != "/" {
		if err := conn.ChangeDir(cfg.dir); err != nil {
			conn.MakeDir(cfg.dir)
			if err := conn.ChangeDir(cfg.dir); err != nil {
				return u.warn(fmt.Sprintf("offsite upload skipped: cannot access directory %s: %v", cfg.dir, err))
			}
		}
	}

	var warnings []string
	uploaded := 0
	for _, f := range result.Files {
		if err := u.storeFile(conn, f.Name); err != nil {
			warnings = append(warnings, fmt.Sprintf("offsite upload of %s failed: %v", f.Name, err))
			continue
		}
		uploaded++
	}

	log.Printf("Offsite: uploaded %d/%d backup files to %s", uploaded, len(result.Files), cfg.host)
	for _, w := range warnings {
		log.Printf("Offsite: %s", w)
	}
	return warnings
}

func (u *OffsiteUploader) storeFile(conn *ftp.ServerConn, name string) error {
	file, err := os.Open(filepath.Join(u.backupDir, name))
	if err != nil {
		return err
	}
	defer file.Close()
	return conn.Stor(name, file)
}

func (u *OffsiteUploader) warn(msg string) []string {
	log.Printf("Offsite: %s", msg)
	return []string{msg}
}

// TestFTPConnection validates FTP credentials and directory access without
// uploading anything.
func TestFTPConnection(host string, port int, username, password, dir string) error {
	if port <= 0 {
		port = 21
	}
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(10*time.Second))
	if err != nil {
		return fmt.Errorf("connection failed: %v", err)
	}
	defer conn.Quit()

	if err := conn.Login(username, password); err != nil {
		return fmt.Errorf("login failed: %v", err)
	}

	if dir != "" && dir != "/" {
		if err := conn.ChangeDir(dir); err != nil {
			if err := conn.MakeDir(dir); err != nil {
				return fmt.Errorf("cannot access or create directory %s: %v", dir, err)
			}
		}
	}
	return nil
}
