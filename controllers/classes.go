package controllers

import (
	"errors"
	"strconv"
	"time"

	"musicschool_go/database"
	"musicschool_go/middleware"
	"musicschool_go/models"
	"musicschool_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClassController struct{}

// errClassFull aborts the enroll transaction when capacity is reached.
var errClassFull = errors.New("class is full")

// checkCapacity rejects a new enrollment once the active count has reached
// the class limit.
func checkCapacity(enrolled int64, maxStudents int) error {
	if enrolled >= int64(maxStudents) {
		return errClassFull
	}
	return nil
}

// ClassRow is a class list row enriched with instrument/teacher names and
// the active enrollment count.
type ClassRow struct {
	models.Class
	InstrumentName   *string `json:"instrument_name"`
	TeacherName      *string `json:"teacher_name"`
	EnrolledStudents int64   `json:"enrolled_students"`
}

// EnrolledStudentRow is a student row plus enrollment info for the class
// detail response.
type EnrolledStudentRow struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Active         bool      `json:"active"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	Status         string    `json:"status"`
}

// GetClasses returns classes, optionally filtered by type and active flag
func (cc *ClassController) GetClasses(c *fiber.Ctx) error {
	query := database.DB.Table("classes c").
		Select("c.*, i.name AS instrument_name, t.name AS teacher_name, " +
			"(SELECT COUNT(*) FROM class_enrollments WHERE class_id = c.id AND status = 'active') AS enrolled_students").
		Joins("LEFT JOIN instruments i ON c.instrument_id = i.id").
		Joins("LEFT JOIN teachers t ON c.teacher_id = t.id")

	if classType := c.Query("type"); classType != "" {
		query = query.Where("c.type = ?", classType)
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("c.active = ?", active == "true")
	}

	var classes []ClassRow
	if err := query.Order("c.name ASC").Scan(&classes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch classes",
		})
	}

	return c.JSON(classes)
}

// GetClass returns a class enriched with its enrolled students
func (cc *ClassController) GetClass(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid class ID",
		})
	}

	var class models.Class
	if err := database.DB.Preload("Instrument").Preload("Teacher").
		First(&class, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Class not found",
		})
	}

	var students []EnrolledStudentRow
	database.DB.Table("class_enrollments ce").
		Select("s.id, s.name, s.phone, s.active, ce.enrollment_date, ce.status").
		Joins("JOIN students s ON ce.student_id = s.id").
		Where("ce.class_id = ?", class.ID).
		Order("s.name ASC").
		Scan(&students)

	return c.JSON(fiber.Map{
		"class":    class,
		"students": students,
	})
}

// CreateClassRequest is the class creation payload.
type CreateClassRequest struct {
	Name         string  `json:"name" validate:"required"`
	InstrumentID *uint   `json:"instrument_id"`
	TeacherID    *uint   `json:"teacher_id"`
	Type         string  `json:"type" validate:"required,oneof=instrument general-rehearsal"`
	DayOfWeek    string  `json:"day_of_week"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	MaxStudents  int     `json:"max_students"`
	MonthlyFee   float64 `json:"monthly_fee"`
}

// CreateClass creates a new class
func (cc *ClassController) CreateClass(c *fiber.Ctx) error {
	var req CreateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	if req.MaxStudents <= 0 {
		req.MaxStudents = 10
	}

	class := models.Class{
		Name:         req.Name,
		InstrumentID: req.InstrumentID,
		TeacherID:    req.TeacherID,
		Type:         req.Type,
		DayOfWeek:    req.DayOfWeek,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		MaxStudents:  req.MaxStudents,
		MonthlyFee:   req.MonthlyFee,
		Active:       true,
	}

	if err := database.DB.Create(&class).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create class",
		})
	}

	middleware.LogActivity(c, "CREATE", "classes", class.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      class.ID,
		"message": "Class created successfully",
	})
}

// UpdateClassRequest uses pointer fields for partial updates.
type UpdateClassRequest struct {
	Name         *string  `json:"name"`
	InstrumentID *uint    `json:"instrument_id"`
	TeacherID    *uint    `json:"teacher_id"`
	Type         *string  `json:"type"`
	DayOfWeek    *string  `json:"day_of_week"`
	StartTime    *string  `json:"start_time"`
	EndTime      *string  `json:"end_time"`
	MaxStudents  *int     `json:"max_students"`
	MonthlyFee   *float64 `json:"monthly_fee"`
	Active       *bool    `json:"active"`
}

// UpdateClass partially updates a class
func (cc *ClassController) UpdateClass(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid class ID",
		})
	}

	var class models.Class
	if err := database.DB.First(&class, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Class not found",
		})
	}

	var req UpdateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.InstrumentID != nil {
		updates["instrument_id"] = *req.InstrumentID
	}
	if req.TeacherID != nil {
		updates["teacher_id"] = *req.TeacherID
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.DayOfWeek != nil {
		updates["day_of_week"] = *req.DayOfWeek
	}
	if req.StartTime != nil {
		updates["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		updates["end_time"] = *req.EndTime
	}
	if req.MaxStudents != nil {
		updates["max_students"] = *req.MaxStudents
	}
	if req.MonthlyFee != nil {
		updates["monthly_fee"] = *req.MonthlyFee
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&class).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update class",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "classes", class.ID)

	return c.JSON(fiber.Map{
		"message": "Class updated successfully",
	})
}

// DeleteClass removes a class
func (cc *ClassController) DeleteClass(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid class ID",
		})
	}

	var class models.Class
	if err := database.DB.First(&class, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Class not found",
		})
	}

	if err := database.DB.Delete(&class).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete class",
		})
	}

	middleware.LogActivity(c, "DELETE", "classes", class.ID)

	return c.JSON(fiber.Map{
		"message": "Class deleted successfully",
	})
}

// EnrollStudent enrolls a student in a class. The class row is locked FOR
// UPDATE for the duration of the transaction so the capacity check and the
// insert are atomic; duplicate enrollments are rejected by the composite
// unique index.
func (cc *ClassController) EnrollStudent(c *fiber.Ctx) error {
	classID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid class ID",
		})
	}

	var req struct {
		StudentID      uint   `json:"student_id" validate:"required"`
		EnrollmentDate string `json:"enrollment_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	enrollmentDate := utils.Today()
	if t := utils.ParseDate(req.EnrollmentDate); t != nil {
		enrollmentDate = *t
	}

	var enrollment models.ClassEnrollment
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var class models.Class
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&class, uint(classID)).Error; err != nil {
			return err
		}

		var enrolled int64
		if err := tx.Model(&models.ClassEnrollment{}).
			Where("class_id = ? AND status = ?", class.ID, "active").
			Count(&enrolled).Error; err != nil {
			return err
		}
		if err := checkCapacity(enrolled, class.MaxStudents); err != nil {
			return err
		}

		enrollment = models.ClassEnrollment{
			ClassID:        class.ID,
			StudentID:      req.StudentID,
			EnrollmentDate: enrollmentDate,
			Status:         "active",
		}
		return tx.Create(&enrollment).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Class not found",
			})
		case errors.Is(err, errClassFull):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Class has no available spots",
			})
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Student is already enrolled in this class",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to enroll student",
		})
	}

	middleware.LogActivity(c, "CREATE", "class_enrollments", enrollment.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      enrollment.ID,
		"message": "Student enrolled successfully",
	})
}

// RemoveStudent removes a student's enrollment from a class
func (cc *ClassController) RemoveStudent(c *fiber.Ctx) error {
	classID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid class ID",
		})
	}
	studentID, err := strconv.ParseUint(c.Params("studentId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	result := database.DB.Where("class_id = ? AND student_id = ?", uint(classID), uint(studentID)).
		Delete(&models.ClassEnrollment{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to remove student from class",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Enrollment not found",
		})
	}

	middleware.LogActivity(c, "DELETE", "class_enrollments", uint(classID))

	return c.JSON(fiber.Map{
		"message": "Student removed from class successfully",
	})
}
