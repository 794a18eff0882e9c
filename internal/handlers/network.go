package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lintasbill/backend/internal/database"
	"github.com/lintasbill/backend/internal/models"
)

// NetworkHandler serves the read side of the network inventory: ODPs, cable
// routes and routed segments. Entries are maintained through restores and
// the map import tooling, so only listing lives here.
type NetworkHandler struct{}

func NewNetworkHandler() *NetworkHandler {
	return &NetworkHandler{}
}

// ListODPs returns all distribution points with their cable route.
func (h *NetworkHandler) ListODPs(c *fiber.Ctx) error {
	var odps []models.ODP
	if err := database.DB.Preload("CableRoute").Order("code ASC").Find(&odps).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch ODPs",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    odps,
	})
}

// GetODP returns one distribution point with its connected customers.
func (h *NetworkHandler) GetODP(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ODP ID",
		})
	}

	var odp models.ODP
	if err := database.DB.Preload("CableRoute").First(&odp, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "ODP not found",
		})
	}

	var customers []models.Customer
	database.DB.Where("odp_id = ?", id).Order("name ASC").Find(&customers)

	return c.JSON(fiber.Map{
		"success":   true,
		"data":      odp,
		"customers": customers,
	})
}

// ListCableRoutes returns all fiber runs for the coverage map.
func (h *NetworkHandler) ListCableRoutes(c *fiber.Ctx) error {
	var routes []models.CableRoute
	if err := database.DB.Order("name ASC").Find(&routes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch cable routes",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    routes,
	})
}

// ListSegments returns all routed subnets.
func (h *NetworkHandler) ListSegments(c *fiber.Ctx) error {
	var segments []models.NetworkSegment
	if err := database.DB.Order("vlan_id ASC, name ASC").Find(&segments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch network segments",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    segments,
	})
}
