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

type TeacherController struct{}

// TeacherClassRow is a class row enriched for the teacher detail response.
type TeacherClassRow struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	DayOfWeek        string  `json:"day_of_week"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	MaxStudents      int     `json:"max_students"`
	MonthlyFee       float64 `json:"monthly_fee"`
	Active           bool    `json:"active"`
	InstrumentName   *string `json:"instrument_name"`
	EnrolledStudents int64   `json:"enrolled_students"`
}

// GetTeachers returns teachers, optionally filtered by active flag
func (tc *TeacherController) GetTeachers(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Teacher{})

	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	var teachers []models.Teacher
	if err := query.Order("name ASC").Find(&teachers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch teachers",
		})
	}

	return c.JSON(teachers)
}

// GetTeacher returns a teacher enriched with their classes
func (tc *TeacherController) GetTeacher(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid teacher ID",
		})
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Teacher not found",
		})
	}

	var classes []TeacherClassRow
	database.DB.Table("classes c").
		Select("c.id, c.name, c.type, c.day_of_week, c.start_time, c.end_time, c.max_students, c.monthly_fee, c.active, i.name AS instrument_name, "+
			"(SELECT COUNT(*) FROM class_enrollments WHERE class_id = c.id AND status = 'active') AS enrolled_students").
		Joins("LEFT JOIN instruments i ON c.instrument_id = i.id").
		Where("c.teacher_id = ?", teacher.ID).
		Scan(&classes)

	return c.JSON(fiber.Map{
		"teacher": teacher,
		"classes": classes,
	})
}

// CreateTeacherRequest mirrors the student payload: optional email+password
// create a linked employee account.
type CreateTeacherRequest struct {
	Name      string `json:"name" validate:"required"`
	CPF       string `json:"cpf" validate:"required"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date"`
	Address   string `json:"address"`
	Specialty string `json:"specialty"`
	HireDate  string `json:"hire_date"`
	Email     string `json:"email" validate:"omitempty,email"`
	Password  string `json:"password" validate:"omitempty,min=6"`
}

// CreateTeacher registers a teacher, optionally with a login account
func (tc *TeacherController) CreateTeacher(c *fiber.Ctx) error {
	var req CreateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	teacher := models.Teacher{
		Name:      req.Name,
		CPF:       req.CPF,
		Phone:     req.Phone,
		BirthDate: utils.ParseDate(req.BirthDate),
		Address:   req.Address,
		Specialty: req.Specialty,
		HireDate:  utils.ParseDate(req.HireDate),
		Active:    true,
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
				Role:     models.RoleEmployee,
				Active:   true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			teacher.UserID = &user.ID
		}
		return tx.Create(&teacher).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "CPF or email already registered",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create teacher",
		})
	}

	middleware.LogActivity(c, "CREATE", "teachers", teacher.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      teacher.ID,
		"message": "Teacher created successfully",
	})
}

// UpdateTeacherRequest uses pointer fields for partial updates.
type UpdateTeacherRequest struct {
	Name      *string `json:"name"`
	CPF       *string `json:"cpf"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birth_date"`
	Address   *string `json:"address"`
	Specialty *string `json:"specialty"`
	HireDate  *string `json:"hire_date"`
	Active    *bool   `json:"active"`
}

// UpdateTeacher partially updates a teacher record
func (tc *TeacherController) UpdateTeacher(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid teacher ID",
		})
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Teacher not found",
		})
	}

	var req UpdateTeacherRequest
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
	if req.Specialty != nil {
		updates["specialty"] = *req.Specialty
	}
	if req.HireDate != nil {
		if t := utils.ParseDate(*req.HireDate); t != nil {
			updates["hire_date"] = t
		}
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&teacher).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "CPF already registered",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update teacher",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "teachers", teacher.ID)

	return c.JSON(fiber.Map{
		"message": "Teacher updated successfully",
	})
}

// DeleteTeacher removes a teacher record
func (tc *TeacherController) DeleteTeacher(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid teacher ID",
		})
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Teacher not found",
		})
	}

	if err := database.DB.Delete(&teacher).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete teacher",
		})
	}

	middleware.LogActivity(c, "DELETE", "teachers", teacher.ID)

	return c.JSON(fiber.Map{
		"message": "Teacher deleted successfully",
	})
}
