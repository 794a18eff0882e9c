package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lintasbill/backend/internal/database"
	"github.com/lintasbill/backend/internal/logtail"
	"github.com/lintasbill/backend/internal/models"
)

type LogsHandler struct {
	reader *logtail.Reader
}

func NewLogsHandler(reader *logtail.Reader) *LogsHandler {
	return &LogsHandler{reader: reader}
}

// List returns the tail of the API log file, newest first. Supports
// limit, level and q (substring search) query parameters.
func (h *LogsHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))

	entries, err := h.reader.Tail(limit, c.Query("level"), c.Query("q"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Failed to read logs: %v", err),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    entries,
		"total":   len(entries),
	})
}

// ListActivity returns the audit trail with pagination.
func (h *LogsHandler) ListActivity(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	var logs []models.ActivityLog
	var total int64

	query := database.DB.Model(&models.ActivityLog{})
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if entityType := c.Query("entity_type"); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	query.Count(&total)
	query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    logs,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}
