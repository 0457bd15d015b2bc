package controllers

import (
	"errors"
	"strconv"

	"musicschool_go/database"
	"musicschool_go/middleware"
	"musicschool_go/models"
	"musicschool_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type InstrumentController struct{}

// GetInstruments returns instruments ordered by name, active only by default
func (ic *InstrumentController) GetInstruments(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Instrument{})

	if active := c.Query("active", "true"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	var instruments []models.Instrument
	if err := query.Order("name ASC").Find(&instruments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch instruments",
		})
	}

	return c.JSON(instruments)
}

type CreateInstrumentRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateInstrument adds a new lookup row
func (ic *InstrumentController) CreateInstrument(c *fiber.Ctx) error {
	var req CreateInstrumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	instrument := models.Instrument{Name: req.Name, Active: true}
	if err := database.DB.Create(&instrument).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Instrument already registered",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create instrument",
		})
	}

	middleware.LogActivity(c, "CREATE", "instruments", instrument.ID)

	return c.Status(fiber.StatusCreated).JSON(instrument)
}

type UpdateInstrumentRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

// UpdateInstrument renames or toggles a lookup row
func (ic *InstrumentController) UpdateInstrument(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid instrument ID",
		})
	}

	var instrument models.Instrument
	if err := database.DB.First(&instrument, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Instrument not found",
		})
	}

	var req UpdateInstrumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&instrument).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Instrument already registered",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update instrument",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "instruments", instrument.ID)

	return c.JSON(instrument)
}

// DeactivateInstrument clears the active flag instead of deleting, so
// existing classes keep their instrument reference
func (ic *InstrumentController) DeactivateInstrument(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid instrument ID",
		})
	}

	var instrument models.Instrument
	if err := database.DB.First(&instrument, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Instrument not found",
		})
	}

	if err := database.DB.Model(&instrument).Update("active", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to deactivate instrument",
		})
	}

	middleware.LogActivity(c, "DELETE", "instruments", instrument.ID)

	return c.JSON(fiber.Map{
		"message": "Instrument deactivated",
	})
}
