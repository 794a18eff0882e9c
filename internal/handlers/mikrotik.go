package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/lintasbill/backend/internal/database"
	"github.com/lintasbill/backend/internal/mikrotik"
	"github.com/lintasbill/backend/internal/models"
	"github.com/lintasbill/backend/internal/settings"
)

type MikrotikHandler struct {
	store *settings.Store
}

func NewMikrotikHandler(store *settings.Store) *MikrotikHandler {
	return &MikrotikHandler{store: store}
}

func (h *MikrotikHandler) scriptOptions() mikrotik.ScriptOptions {
	return mikrotik.ScriptOptions{
		CompanyName:      h.store.GetString("company_name"),
		IsolationProfile: h.store.GetString("isolation_profile"),
		LocalAddress:     h.store.GetString("pppoe_local_address"),
	}
}

func (h *MikrotikHandler) loadData() ([]models.Package, []models.Customer, error) {
	var packages []models.Package
	if err := database.DB.Order("name").Find(&packages).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load packages: %v", err)
	}

	var customers []models.Customer
	if err := database.DB.Preload("Package").Order("name").Find(&customers).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load customers: %v", err)
	}
	return packages, customers, nil
}

func scriptResponse(c *fiber.Ctx, script string) error {
	// download=1 streams the script as an importable .rsc file
	if c.Query("download") == "1" {
		c.Set("Content-Type", "text/plain; charset=utf-8")
		c.Set("Content-Disposition", `attachment; filename="lintasbill.rsc"`)
		return c.SendString(script)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"script": script,
		},
	})
}

// Script returns the full RouterOS provisioning script.
func (h *MikrotikHandler) Script(c *fiber.Ctx) error {
	packages, customers, err := h.loadData()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	return scriptResponse(c, mikrotik.GenerateScript(packages, customers, h.scriptOptions()))
}

// Profiles returns only the PPP profile section.
func (h *MikrotikHandler) Profiles(c *fiber.Ctx) error {
	var packages []models.Package
	if err := database.DB.Order("name").Find(&packages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("failed to load packages: %v", err),
		})
	}
	return scriptResponse(c, mikrotik.ProfileScript(packages, h.scriptOptions()))
}

// Secrets returns only the PPP secret section.
func (h *MikrotikHandler) Secrets(c *fiber.Ctx) error {
	var customers []models.Customer
	if err := database.DB.Preload("Package").Order("name").Find(&customers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("failed to load customers: %v", err),
		})
	}
	return scriptResponse(c, mikrotik.SecretScript(customers, h.scriptOptions()))
}

// AddressList returns only the isolation address-list section.
func (h *MikrotikHandler) AddressList(c *fiber.Ctx) error {
	var customers []models.Customer
	if err := database.DB.Order("name").Find(&customers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("failed to load customers: %v", err),
		})
	}
	return scriptResponse(c, mikrotik.AddressListScript(customers, h.scriptOptions()))
}
