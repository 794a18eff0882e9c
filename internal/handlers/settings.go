package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lintasbill/backend/internal/database"
	"github.com/lintasbill/backend/internal/models"
	"github.com/lintasbill/backend/internal/settings"
)

type SettingsHandler struct {
	store     *settings.Store
	uploadDir string
}

func NewSettingsHandler(store *settings.Store, uploadDir string) *SettingsHandler {
	return &SettingsHandler{store: store, uploadDir: uploadDir}
}

// List returns all preferences as a flat map.
func (h *SettingsHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.store.All(),
	})
}

// Update merges the posted keys over the stored preferences. Keys absent
// from the body stay as they are.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	updates := make(map[string]interface{})
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if err := h.store.Update(updates); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Failed to save settings: %v", err),
		})
	}

	activityLog := models.ActivityLog{
		Action:      models.ActivityActionUpdate,
		EntityType:  "settings",
		Description: fmt.Sprintf("Updated %d settings", len(updates)),
		IPAddress:   c.IP(),
	}
	database.DB.Create(&activityLog)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Settings updated",
		"data":    h.store.All(),
	})
}

// UploadLogo handles the company logo upload.
func (h *SettingsHandler) UploadLogo(c *fiber.Ctx) error {
	file, err := c.FormFile("logo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "No file uploaded",
		})
	}

	// Validate file type
	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowedExts := map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".svg": true, ".webp": true}
	if !allowedExts[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid file type. Allowed: PNG, JPG, JPEG, SVG, WEBP",
		})
	}

	// Validate file size (max 2MB)
	if file.Size > 2*1024*1024 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "File too large. Maximum size is 2MB",
		})
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create upload directory",
		})
	}

	// Delete old logo if exists
	if old := h.store.GetString("company_logo"); old != "" {
		os.Remove(filepath.Join(h.uploadDir, filepath.Base(old)))
	}

	filename := fmt.Sprintf("logo_%s%s", uuid.New().String()[:8], ext)
	savePath := filepath.Join(h.uploadDir, filename)

	if err := c.SaveFile(file, savePath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to save file",
		})
	}

	logoURL := "/uploads/" + filename
	if err := h.store.Set("company_logo", logoURL); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Failed to save settings: %v", err),
		})
	}

	activityLog := models.ActivityLog{
		Action:      models.ActivityActionUpload,
		EntityType:  "settings",
		EntityName:  filename,
		Description: "Uploaded company logo",
		IPAddress:   c.IP(),
	}
	database.DB.Create(&activityLog)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logo uploaded successfully",
		"data": fiber.Map{
			"url": logoURL,
		},
	})
}

// DeleteLogo removes the company logo file and clears the setting.
func (h *SettingsHandler) DeleteLogo(c *fiber.Ctx) error {
	logo := h.store.GetString("company_logo")
	if logo == "" {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "No logo to delete",
		})
	}

	os.Remove(filepath.Join(h.uploadDir, filepath.Base(logo)))

	if err := h.store.Set("company_logo", ""); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Failed to save settings: %v", err),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logo deleted",
	})
}
