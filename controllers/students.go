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
)

type StudentController struct{}

// StudentClassRow is a class row enriched with enrollment info for the
// student detail response.
type StudentClassRow struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	DayOfWeek      string    `json:"day_of_week"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	MonthlyFee     float64   `json:"monthly_fee"`
	InstrumentName *string   `json:"instrument_name"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	Status         string    `json:"status"`
}

// GetStudents returns students, optionally filtered by active flag and a
// free-text search over name/CPF/phone.
func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Student{})

	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR cpf LIKE ? OR phone LIKE ?", like, like, like)
	}

	var students []models.Student
	if err := query.Order("name ASC").Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch students",
		})
	}

	return c.JSON(students)
}

// GetStudent returns a student enriched with enrolled classes and pending payments
func (sc *StudentController) GetStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	var classes []StudentClassRow
	database.DB.Table("class_enrollments ce").
		Select("c.id, c.name, c.type, c.day_of_week, c.start_time, c.end_time, c.monthly_fee, i.name AS instrument_name, ce.enrollment_date, ce.status").
		Joins("JOIN classes c ON ce.class_id = c.id").
		Joins("LEFT JOIN instruments i ON c.instrument_id = i.id").
		Where("ce.student_id = ?", student.ID).
		Scan(&classes)

	var pendingPayments []models.Payment
	database.DB.Where("student_id = ? AND status = ?", student.ID, "pending").
		Order("due_date ASC").Find(&pendingPayments)

	return c.JSON(fiber.Map{
		"student":          student,
		"classes":          classes,
		"pending_payments": pendingPayments,
	})
}

// CreateStudentRequest is the student creation payload. Email and password
// are optional; when both are present a linked login account is created in
// the same transaction.
type CreateStudentRequest struct {
	Name             string `json:"name" validate:"required"`
	CPF              string `json:"cpf" validate:"required"`
	Phone            string `json:"phone"`
	BirthDate        string `json:"birth_date"`
	Address          string `json:"address"`
	ResponsibleName  string `json:"responsible_name"`
	ResponsiblePhone string `json:"responsible_phone"`
	EnrollmentDate   string `json:"enrollment_date" validate:"required"`
	Email            string `json:"email" validate:"omitempty,email"`
	Password         string `json:"password" validate:"omitempty,min=6"`
}

// CreateStudent registers a student, optionally with a login account
func (sc *StudentController) CreateStudent(c *fiber.Ctx) error {
	var req CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	enrollmentDate := utils.ParseDate(req.EnrollmentDate)
	if enrollmentDate == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid enrollment_date format (use YYYY-MM-DD)",
		})
	}

	student := models.Student{
		Name:             req.Name,
		CPF:              req.CPF,
		Phone:            req.Phone,
		BirthDate:        utils.ParseDate(req.BirthDate),
		Address:          req.Address,
		ResponsibleName:  req.ResponsibleName,
		ResponsiblePhone: req.ResponsiblePhone,
		EnrollmentDate:   *enrollmentDate,
		Active:           true,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if req.Email != "" && req.Password != "" {
			hashed, err := utils.HashPassword(req.Password)
			if err != nil {
				return err
			}
			user := models.User{
				Email:    req.Email,
				Password: hashed,
				Role:     models.RoleStudent,
				Active:   true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			student.UserID = &user.ID
		}
		return tx.Create(&student).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "CPF or email already registered",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create student",
		})
	}

	middleware.LogActivity(c, "CREATE", "students", student.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      student.ID,
		"message": "Student created successfully",
	})
}

// UpdateStudentRequest uses pointer fields so omitted values keep their
// stored counterparts (COALESCE semantics).
type UpdateStudentRequest struct {
	Name             *string `json:"name"`
	CPF              *string `json:"cpf"`
	Phone            *string `json:"phone"`
	BirthDate        *string `json:"birth_date"`
	Address          *string `json:"address"`
	ResponsibleName  *string `json:"responsible_name"`
	ResponsiblePhone *string `json:"responsible_phone"`
	Active           *bool   `json:"active"`
}

// UpdateStudent partially updates a student record
func (sc *StudentController) UpdateStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	var req UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.CPF != nil {
		updates["cpf"] = *req.CPF
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.BirthDate != nil {
		if t := utils.ParseDate(*req.BirthDate); t != nil {
			updates["birth_date"] = t
		}
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.ResponsibleName != nil {
		updates["responsible_name"] = *req.ResponsibleName
	}
	if req.ResponsiblePhone != nil {
		updates["responsible_phone"] = *req.ResponsiblePhone
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&student).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "CPF already registered",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update student",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "students", student.ID)

	return c.JSON(fiber.Map{
		"message": "Student updated successfully",
	})
}

// DeleteStudent removes a student record
func (sc *StudentController) DeleteStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	if err := database.DB.Delete(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete student",
		})
	}

	middleware.LogActivity(c, "DELETE", "students", student.ID)

	return c.JSON(fiber.Map{
		"message": "Student deleted successfully",
	})
}
