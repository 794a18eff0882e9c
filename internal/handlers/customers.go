package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lintasbill/backend/internal/database"
	"github.com/lintasbill/backend/internal/models"
)

type CustomerHandler struct{}

func NewCustomerHandler() *CustomerHandler {
	return &CustomerHandler{}
}

// List returns customers with optional status filter and name/phone search.
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Customer{}).Preload("Package").Preload("ODP")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("q"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR pppoe_username LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)

	var customers []models.Customer
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&customers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch customers",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customers,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// Get returns a single customer with relations.
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid customer ID",
		})
	}

	var customer models.Customer
	if err := database.DB.Preload("Package").Preload("ODP").First(&customer, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Customer not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customer,
	})
}

// Create registers a new customer.
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var customer models.Customer
	if err := c.BodyParser(&customer); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if customer.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Customer name is required",
		})
	}
	if customer.Status == "" {
		customer.Status = models.CustomerStatusActive
	}
	if customer.DueDay < 1 || customer.DueDay > 28 {
		customer.DueDay = 1
	}

	customer.ID = 0
	if err := database.DB.Create(&customer).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create customer",
		})
	}

	activityLog := models.ActivityLog{
		Action:      models.ActivityActionCreate,
		EntityType:  "customer",
		EntityID:    customer.ID,
		EntityName:  customer.Name,
		Description: fmt.Sprintf("Created customer %s", customer.Name),
		IPAddress:   c.IP(),
	}
	database.DB.Create(&activityLog)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Customer created successfully",
		"data":    customer,
	})
}

// Update modifies an existing customer.
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid customer ID",
		})
	}

	var existing models.Customer
	if err := database.DB.First(&existing, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Customer not found",
		})
	}

	var updates models.Customer
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	existing.Name = updates.Name
	existing.Phone = updates.Phone
	existing.Address = updates.Address
	existing.PackageID = updates.PackageID
	existing.ODPID = updates.ODPID
	existing.PPPoEUsername = updates.PPPoEUsername
	existing.PPPoEPassword = updates.PPPoEPassword
	existing.Latitude = updates.Latitude
	existing.Longitude = updates.Longitude
	if updates.Status != "" {
		existing.Status = updates.Status
	}
	if updates.DueDay >= 1 && updates.DueDay <= 28 {
		existing.DueDay = updates.DueDay
	}

	if err := database.DB.Save(&existing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update customer",
		})
	}

	activityLog := models.ActivityLog{
		Action:      models.ActivityActionUpdate,
		EntityType:  "customer",
		EntityID:    existing.ID,
		EntityName:  existing.Name,
		Description: fmt.Sprintf("Updated customer %s", existing.Name),
		IPAddress:   c.IP(),
	}
	database.DB.Create(&activityLog)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Customer updated successfully",
		"data":    existing,
	})
}

// UpdateStatus switches a customer between active, isolated and inactive.
// The change takes effect on the router the next time the provisioning
// script is generated and imported.
func (h *CustomerHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid customer ID",
		})
	}

	var req struct {
		Status models.CustomerStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	switch req.Status {
	case models.CustomerStatusActive, models.CustomerStatusIsolated, models.CustomerStatusInactive:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid status, must be active, isolated or inactive",
		})
	}

	var customer models.Customer
	if err := database.DB.First(&customer, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Customer not found",
		})
	}

	customer.Status = req.Status
	if err := database.DB.Save(&customer).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update status",
		})
	}

	activityLog := models.ActivityLog{
		Action:      models.ActivityActionUpdate,
		EntityType:  "customer",
		EntityID:    customer.ID,
		EntityName:  customer.Name,
		Description: fmt.Sprintf("Set customer %s status to %s", customer.Name, req.Status),
		IPAddress:   c.IP(),
	}
	database.DB.Create(&activityLog)

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Customer status set to %s", req.Status),
		"data":    customer,
	})
}

// Delete removes a customer.
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid customer ID",
		})
	}

	var customer models.Customer
	if err := database.DB.First(&customer, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Customer not found",
		})
	}

	if err := database.DB.Delete(&customer).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete customer",
		})
	}

	activityLog := models.ActivityLog{
		Action:      models.ActivityActionDelete,
		EntityType:  "customer",
		EntityID:    customer.ID,
		EntityName:  customer.Name,
		Description: fmt.Sprintf("Deleted customer %s", customer.Name),
		IPAddress:   c.IP(),
	}
	database.DB.Create(&activityLog)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Customer deleted successfully",
	})
}
