package handlers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/lintasbill/backend/internal/backup"
	"github.com/lintasbill/backend/internal/database"
	"github.com/lintasbill/backend/internal/models"
	"github.com/lintasbill/backend/internal/services"
)

type BackupHandler struct {
	manager   *backup.Manager
	backupDir string
	whatsapp  *services.WhatsAppService
	offsite   *services.OffsiteUploader
}

func NewBackupHandler(manager *backup.Manager, backupDir string, whatsapp *services.WhatsAppService, offsite *services.OffsiteUploader) *BackupHandler {
	return &BackupHandler{
		manager:   manager,
		backupDir: backupDir,
		whatsapp:  whatsapp,
		offsite:   offsite,
	}
}

// List returns the backup catalog, newest first.
func (h *BackupHandler) List(c *fiber.Ctx) error {
	sets, err := h.manager.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Failed to list backups: %v", err),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    sets,
	})
}

// Create produces a new backup set from the live database.
func (h *BackupHandler) Create(c *fiber.Ctx) error {
	result, err := h.manager.Create()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Failed to create backup: %v", err),
		})
	}

	// offsite mirror and group notification ride on a successful backup
	result.Warnings = append(result.Warnings, h.offsite.UploadBackupSet(result)...)
	h.whatsapp.NotifyBackupCreated(result)

	activityLog := models.ActivityLog{
		Action:      models.ActivityActionBackup,
		EntityType:  "backup",
		EntityName:  result.Filename,
		Description: fmt.Sprintf("Created backup %s (%d files)", result.BaseName, len(result.Files)),
		IPAddress:   c.IP(),
	}
	database.DB.Create(&activityLog)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Backup created successfully",
		"data":    result,
	})
}

// Restore replaces the billing tables with the contents of a backup set.
func (h *BackupHandler) Restore(c *fiber.Ctx) error {
	filename := c.Params("filename")
	if filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Filename is required",
		})
	}

	result, err := h.manager.Restore(filename)
	if err != nil {
		if errors.Is(err, backup.ErrBackupNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Backup not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Failed to restore backup: %v", err),
		})
	}

	h.whatsapp.NotifyRestoreCompleted(filename, result)

	activityLog := models.ActivityLog{
		Action:      models.ActivityActionRestore,
		EntityType:  "backup",
		EntityName:  filepath.Base(filename),
		Description: fmt.Sprintf("Restored %d rows from %s", result.TotalRestored, filepath.Base(filename)),
		IPAddress:   c.IP(),
	}
	database.DB.Create(&activityLog)

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Restore completed, %d rows restored", result.TotalRestored),
		"data":    result,
	})
}

// Download streams one file of a backup set.
func (h *BackupHandler) Download(c *fiber.Ctx) error {
	filename := c.Params("filename")
	if filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Filename is required",
		})
	}

	// Sanitize filename to prevent path traversal
	filename = filepath.Base(filename)
	filePath := filepath.Join(h.backupDir, filename)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Backup not found",
		})
	}

	return c.Download(filePath, filename)
}

// TestFTP validates offsite storage credentials.
func (h *BackupHandler) TestFTP(c *fiber.Ctx) error {
	var req struct {
		Host     string `json:"host"`
		Port     int    `json:"port"`
		Username string `json:"username"`
		Password string `json:"password"`
		Dir      string `json:"dir"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if err := services.TestFTPConnection(req.Host, req.Port, req.Username, req.Password, req.Dir); err != nil {
		return c.JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "FTP connection successful",
	})
}
