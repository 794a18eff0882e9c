package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lintasbill/backend/internal/services"
)

type WhatsAppHandler struct {
	service *services.WhatsAppService
}

func NewWhatsAppHandler(service *services.WhatsAppService) *WhatsAppHandler {
	return &WhatsAppHandler{service: service}
}

// Groups lists the WhatsApp groups known to the configured gateway.
func (h *WhatsAppHandler) Groups(c *fiber.Ctx) error {
	groups, err := h.service.ListGroups()
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    groups,
	})
}

// Test checks gateway connectivity with the posted credentials, falling back
// to the stored settings when a field is omitted.
func (h *WhatsAppHandler) Test(c *fiber.Ctx) error {
	var req struct {
		GatewayURL string `json:"gateway_url"`
		APIKey     string `json:"api_key"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	cfg := &services.GatewayConfig{BaseURL: req.GatewayURL, APIKey: req.APIKey}
	if cfg.BaseURL == "" {
		stored, err := h.service.Config()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}
		cfg = stored
	}

	if err := h.service.TestConnection(cfg); err != nil {
		return c.JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Gateway connection successful",
	})
}

// Send posts a message to a WhatsApp group.
func (h *WhatsAppHandler) Send(c *fiber.Ctx) error {
	var req struct {
		GroupID string `json:"group_id"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Message is required",
		})
	}

	if err := h.service.SendGroupMessage(req.GroupID, req.Message); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Message sent",
	})
}
