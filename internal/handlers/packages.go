package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lintasbill/backend/internal/database"
	"github.com/lintasbill/backend/internal/models"
)

type PackageHandler struct{}

func NewPackageHandler() *PackageHandler {
	return &PackageHandler{}
}

// List returns all packages, active ones first.
func (h *PackageHandler) List(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Package{})
	if c.Query("all", "false") != "true" {
		query = query.Where("is_active = ?", true)
	}

	var packages []models.Package
	if err := query.Order("is_active DESC, name ASC").Find(&packages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch packages",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    packages,
	})
}

// Get returns a single package with its subscriber count.
func (h *PackageHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid package ID",
		})
	}

	var pkg models.Package
	if err := database.DB.First(&pkg, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Package not found",
		})
	}

	var customerCount int64
	database.DB.Model(&models.Customer{}).Where("package_id = ?", id).Count(&customerCount)

	return c.JSON(fiber.Map{
		"success":        true,
		"data":           pkg,
		"customer_count": customerCount,
	})
}

// Create adds a new package.
func (h *PackageHandler) Create(c *fiber.Ctx) error {
	var pkg models.Package
	if err := c.BodyParser(&pkg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if pkg.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Package name is required",
		})
	}

	pkg.ID = 0
	pkg.IsActive = true
	if err := database.DB.Create(&pkg).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create package",
		})
	}

	activityLog := models.ActivityLog{
		Action:      models.ActivityActionCreate,
		EntityType:  "package",
		EntityID:    pkg.ID,
		EntityName:  pkg.Name,
		Description: fmt.Sprintf("Created package %s (%s)", pkg.Name, pkg.RateLimit),
		IPAddress:   c.IP(),
	}
	database.DB.Create(&activityLog)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Package created successfully",
		"data":    pkg,
	})
}

// Update modifies an existing package.
func (h *PackageHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid package ID",
		})
	}

	var existing models.Package
	if err := database.DB.First(&existing, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Package not found",
		})
	}

	var updates models.Package
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	existing.Name = updates.Name
	existing.Price = updates.Price
	existing.RateLimit = updates.RateLimit
	existing.Description = updates.Description
	existing.IsActive = updates.IsActive

	if err := database.DB.Save(&existing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update package",
		})
	}

	activityLog := models.ActivityLog{
		Action:      models.ActivityActionUpdate,
		EntityType:  "package",
		EntityID:    existing.ID,
		EntityName:  existing.Name,
		Description: fmt.Sprintf("Updated package %s", existing.Name),
		IPAddress:   c.IP(),
	}
	database.DB.Create(&activityLog)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Package updated successfully",
		"data":    existing,
	})
}

// Delete removes a package that no customer uses.
func (h *PackageHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid package ID",
		})
	}

	var pkg models.Package
	if err := database.DB.First(&pkg, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Package not found",
		})
	}

	var customerCount int64
	database.DB.Model(&models.Customer{}).Where("package_id = ?", id).Count(&customerCount)
	if customerCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Package is used by %d customers", customerCount),
		})
	}

	if err := database.DB.Delete(&pkg).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete package",
		})
	}

	activityLog := models.ActivityLog{
		Action:      models.ActivityActionDelete,
		EntityType:  "package",
		EntityID:    pkg.ID,
		EntityName:  pkg.Name,
		Description: fmt.Sprintf("Deleted package %s", pkg.Name),
		IPAddress:   c.IP(),
	}
	database.DB.Create(&activityLog)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Package deleted successfully",
	})
}
