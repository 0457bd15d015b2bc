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
	"gorm.io/gorm/clause"
)

type EventController struct{}

// EventRow is an event list row with its participant count.
type EventRow struct {
	models.Event
	ParticipantsCount int64 `json:"participants_count"`
}

// EventParticipantRow is a participant with their attendance status.
type EventParticipantRow struct {
	ID     uint    `json:"id"`
	Name   string  `json:"name"`
	Phone  string  `json:"phone"`
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// EventAttendanceRow is an attendance row with the student name.
type EventAttendanceRow struct {
	models.EventAttendance
	StudentName string `json:"student_name"`
}

// GetEvents returns active events, optionally filtered by type and upcoming flag
func (ec *EventController) GetEvents(c *fiber.Ctx) error {
	query := database.DB.Table("events e").
		Select("e.*, (SELECT COUNT(*) FROM event_participants WHERE event_id = e.id) AS participants_count").
		Where("e.active = ?", true)

	if eventType := c.Query("type"); eventType != "" {
		query = query.Where("e.type = ?", eventType)
	}
	if c.Query("upcoming") == "true" {
		query = query.Where("e.event_date >= ?", utils.Today())
	}

	var events []EventRow
	if err := query.Order("e.event_date DESC").Scan(&events).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch events",
		})
	}

	return c.JSON(events)
}

// GetEvent returns an event enriched with its participants
func (ec *EventController) GetEvent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	if err := database.DB.First(&event, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}

	var participants []EventParticipantRow
	database.DB.Table("event_participants ep").
		Select("s.id, s.name, s.phone, ea.status, ea.notes").
		Joins("JOIN students s ON ep.student_id = s.id").
		Joins("LEFT JOIN event_attendances ea ON ea.event_id = ep.event_id AND ea.student_id = s.id").
		Where("ep.event_id = ?", event.ID).
		Order("s.name ASC").
		Scan(&participants)

	return c.JSON(fiber.Map{
		"event":        event,
		"participants": participants,
	})
}

// CreateEventRequest is the event creation payload.
type CreateEventRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	EventDate   string `json:"event_date" validate:"required"`
	Location    string `json:"location"`
	Type        string `json:"type"`
}

// CreateEvent creates a new event
func (ec *EventController) CreateEvent(c *fiber.Ctx) error {
	var req CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	eventDate := utils.ParseDate(req.EventDate)
	if eventDate == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event_date format (use YYYY-MM-DD)",
		})
	}

	event := models.Event{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   *eventDate,
		Location:    req.Location,
		Type:        req.Type,
		Active:      true,
	}

	if err := database.DB.Create(&event).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create event",
		})
	}

	middleware.LogActivity(c, "CREATE", "events", event.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      event.ID,
		"message": "Event created successfully",
	})
}

// UpdateEventRequest uses pointer fields for partial updates.
type UpdateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	EventDate   *string `json:"event_date"`
	Location    *string `json:"location"`
	Type        *string `json:"type"`
	Active      *bool   `json:"active"`
}

// UpdateEvent partially updates an event
func (ec *EventController) UpdateEvent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	if err := database.DB.First(&event, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}

	var req UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.EventDate != nil {
		if t := utils.ParseDate(*req.EventDate); t != nil {
			updates["event_date"] = t
		}
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&event).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update event",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "events", event.ID)

	return c.JSON(fiber.Map{
		"message": "Event updated successfully",
	})
}

// DeleteEvent removes an event
func (ec *EventController) DeleteEvent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	if err := database.DB.First(&event, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}

	if err := database.DB.Delete(&event).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete event",
		})
	}

	middleware.LogActivity(c, "DELETE", "events", event.ID)

	return c.JSON(fiber.Map{
		"message": "Event deleted successfully",
	})
}

// AddParticipant registers a student in an event. The participation row
// and the auto-confirmed attendance row are created in one transaction.
func (ec *EventController) AddParticipant(c *fiber.Ctx) error {
	eventID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var req struct {
		StudentID uint `json:"student_id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		participant := models.EventParticipant{
			EventID:   uint(eventID),
			StudentID: req.StudentID,
		}
		if err := tx.Create(&participant).Error; err != nil {
			return err
		}

		attendance := models.EventAttendance{
			EventID:   uint(eventID),
			StudentID: req.StudentID,
			Status:    "confirmed",
		}
		return tx.Create(&attendance).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Student is already participating in this event",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add participant",
		})
	}

	middleware.LogActivity(c, "CREATE", "event_participants", uint(eventID))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Participant added successfully",
	})
}

// RemoveParticipant removes a student from an event
func (ec *EventController) RemoveParticipant(c *fiber.Ctx) error {
	eventID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}
	studentID, err := strconv.ParseUint(c.Params("studentId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	result := database.DB.Where("event_id = ? AND student_id = ?", uint(eventID), uint(studentID)).
		Delete(&models.EventParticipant{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to remove participant",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Participant not found",
		})
	}

	middleware.LogActivity(c, "DELETE", "event_participants", uint(eventID))

	return c.JSON(fiber.Map{
		"message": "Participant removed successfully",
	})
}

// MarkAttendance upserts the attendance status for an event participant
func (ec *EventController) MarkAttendance(c *fiber.Ctx) error {
	eventID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var req struct {
		StudentID uint   `json:"student_id" validate:"required"`
		Status    string `json:"status" validate:"required,oneof=confirmed present absent"`
		Notes     string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	attendance := models.EventAttendance{
		EventID:   uint(eventID),
		StudentID: req.StudentID,
		Status:    req.Status,
		Notes:     req.Notes,
	}

	if err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "notes"}),
	}).Create(&attendance).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to mark attendance",
		})
	}

	middleware.LogActivity(c, "UPDATE", "event_attendances", uint(eventID))

	return c.JSON(fiber.Map{
		"message": "Attendance marked successfully",
	})
}

// GetAttendances returns the attendance rows for an event
func (ec *EventController) GetAttendances(c *fiber.Ctx) error {
	eventID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var attendances []EventAttendanceRow
	if err := database.DB.Table("event_attendances ea").
		Select("ea.*, s.name AS student_name").
		Joins("JOIN students s ON ea.student_id = s.id").
		Where("ea.event_id = ?", uint(eventID)).
		Order("s.name ASC").
		Scan(&attendances).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch attendances",
		})
	}

	return c.JSON(attendances)
}
