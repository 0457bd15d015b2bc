package controllers

import (
	"math"
	"strconv"

	"musicschool_go/database"
	"musicschool_go/middleware"
	"musicschool_go/models"
	"musicschool_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceController struct{}

// AttendanceStats aggregates attendance counts for a student and/or class.
type AttendanceStats struct {
	Total          int64   `json:"total"`
	Present        int64   `json:"present"`
	Absent         int64   `json:"absent"`
	Late           int64   `json:"late"`
	Justified      int64   `json:"justified"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// ClassAttendanceRow is an attendance row with the student name.
type ClassAttendanceRow struct {
	models.ClassAttendance
	StudentName string `json:"student_name"`
}

// StudentAttendanceRow is an attendance row with class and instrument names.
type StudentAttendanceRow struct {
	models.ClassAttendance
	ClassName      string  `json:"class_name"`
	InstrumentName *string `json:"instrument_name"`
}

// ReportRow is one line of the monthly attendance report. Students with no
// marked attendance in the month appear with TotalClasses = 0.
type ReportRow struct {
	StudentID      uint    `json:"student_id"`
	Name           string  `json:"name"`
	ClassName      string  `json:"class_name"`
	TotalClasses   int64   `json:"total_classes"`
	Present        int64   `json:"present"`
	Absent         int64   `json:"absent"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// attendanceRate computes present/total as a percentage rounded to two
// decimals. Zero marked rows resolve to 0, never a division error; every
// stats and report endpoint uses this same rule.
func attendanceRate(present, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(present)/float64(total)*100*100) / 100
}

// GetByClass returns attendance rows for a class, optionally date-ranged
func (ac *AttendanceController) GetByClass(c *fiber.Ctx) error {
	classID := c.Query("class_id")
	if classID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "class_id is required",
		})
	}

	query := database.DB.Table("class_attendances ca").
		Select("ca.*, s.name AS student_name").
		Joins("JOIN students s ON ca.student_id = s.id").
		Where("ca.class_id = ?", classID)

	if start, end := utils.ParseDate(c.Query("start_date")), utils.ParseDate(c.Query("end_date")); start != nil && end != nil {
		query = query.Where("ca.attendance_date BETWEEN ? AND ?", start, end)
	}

	var attendances []ClassAttendanceRow
	if err := query.Order("ca.attendance_date DESC, s.name ASC").Scan(&attendances).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch attendances",
		})
	}

	return c.JSON(attendances)
}

// GetByStudent returns attendance rows for a student, optionally date-ranged
func (ac *AttendanceController) GetByStudent(c *fiber.Ctx) error {
	studentID := c.Query("student_id")
	if studentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "student_id is required",
		})
	}

	query := database.DB.Table("class_attendances ca").
		Select("ca.*, c.name AS class_name, i.name AS instrument_name").
		Joins("JOIN classes c ON ca.class_id = c.id").
		Joins("LEFT JOIN instruments i ON c.instrument_id = i.id").
		Where("ca.student_id = ?", studentID)

	if start, end := utils.ParseDate(c.Query("start_date")), utils.ParseDate(c.Query("end_date")); start != nil && end != nil {
		query = query.Where("ca.attendance_date BETWEEN ? AND ?", start, end)
	}

	var attendances []StudentAttendanceRow
	if err := query.Order("ca.attendance_date DESC").Scan(&attendances).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch student attendances",
		})
	}

	return c.JSON(attendances)
}

// MarkAttendanceRequest is a single attendance marking.
type MarkAttendanceRequest struct {
	ClassID        uint   `json:"class_id" validate:"required"`
	StudentID      uint   `json:"student_id" validate:"required"`
	AttendanceDate string `json:"attendance_date" validate:"required"`
	Status         string `json:"status" validate:"required,oneof=present absent late justified"`
	Notes          string `json:"notes"`
}

// MarkAttendance upserts one attendance row keyed by (class, student, date)
func (ac *AttendanceController) MarkAttendance(c *fiber.Ctx) error {
	var req MarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	date := utils.ParseDate(req.AttendanceDate)
	if date == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid attendance_date format (use YYYY-MM-DD)",
		})
	}

	attendance := models.ClassAttendance{
		ClassID:        req.ClassID,
		StudentID:      req.StudentID,
		AttendanceDate: *date,
		Status:         req.Status,
		Notes:          req.Notes,
	}

	if err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "class_id"}, {Name: "student_id"}, {Name: "attendance_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "notes"}),
	}).Create(&attendance).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to mark attendance",
		})
	}

	middleware.LogActivity(c, "UPDATE", "class_attendances", attendance.ID)

	return c.JSON(fiber.Map{
		"message": "Attendance marked successfully",
	})
}

// BulkMarkAttendance records a whole roll call in one all-or-nothing
// transaction; a single bad row aborts the entire batch.
func (ac *AttendanceController) BulkMarkAttendance(c *fiber.Ctx) error {
	var req struct {
		ClassID        uint   `json:"class_id" validate:"required"`
		AttendanceDate string `json:"attendance_date" validate:"required"`
		Attendances    []struct {
			StudentID uint   `json:"student_id" validate:"required"`
			Status    string `json:"status" validate:"required,oneof=present absent late justified"`
			Notes     string `json:"notes"`
		} `json:"attendances" validate:"required,min=1,dive"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	date := utils.ParseDate(req.AttendanceDate)
	if date == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid attendance_date format (use YYYY-MM-DD)",
		})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		for _, entry := range req.Attendances {
			attendance := models.ClassAttendance{
				ClassID:        req.ClassID,
				StudentID:      entry.StudentID,
				AttendanceDate: *date,
				Status:         entry.Status,
				Notes:          entry.Notes,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "class_id"}, {Name: "student_id"}, {Name: "attendance_date"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "notes"}),
			}).Create(&attendance).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record roll call",
		})
	}

	middleware.LogActivity(c, "CREATE", "class_attendances", req.ClassID)

	return c.JSON(fiber.Map{
		"message": "Roll call recorded successfully",
	})
}

// GetStats computes attendance counters for a student and/or class. At
// least one of student_id/class_id is required.
func (ac *AttendanceController) GetStats(c *fiber.Ctx) error {
	studentID := c.Query("student_id")
	classID := c.Query("class_id")

	if studentID == "" && classID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "student_id or class_id is required",
		})
	}

	query := database.DB.Model(&models.ClassAttendance{}).
		Select("COUNT(*) AS total, " +
			"COALESCE(SUM(CASE WHEN status = 'present' THEN 1 ELSE 0 END), 0) AS present, " +
			"COALESCE(SUM(CASE WHEN status = 'absent' THEN 1 ELSE 0 END), 0) AS absent, " +
			"COALESCE(SUM(CASE WHEN status = 'late' THEN 1 ELSE 0 END), 0) AS late, " +
			"COALESCE(SUM(CASE WHEN status = 'justified' THEN 1 ELSE 0 END), 0) AS justified")

	if studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if start, end := utils.ParseDate(c.Query("start_date")), utils.ParseDate(c.Query("end_date")); start != nil && end != nil {
		query = query.Where("attendance_date BETWEEN ? AND ?", start, end)
	}

	var stats AttendanceStats
	if err := query.Scan(&stats).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch attendance stats",
		})
	}
	stats.AttendanceRate = attendanceRate(stats.Present, stats.Total)

	return c.JSON(stats)
}

// GetReport builds the monthly attendance report. Active enrollments are
// LEFT JOINed against the month's rows, so students without any marked
// attendance still appear.
func (ac *AttendanceController) GetReport(c *fiber.Ctx) error {
	month, errM := strconv.Atoi(c.Query("month"))
	year, errY := strconv.Atoi(c.Query("year"))
	if errM != nil || errY != nil || month < 1 || month > 12 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "month and year are required",
		})
	}

	rows, err := monthlyReportRows(database.DB, month, year)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build attendance report",
		})
	}

	return c.JSON(rows)
}

// monthlyReportRows is shared by the JSON report and the XLSX export.
func monthlyReportRows(db *gorm.DB, month, year int) ([]ReportRow, error) {
	var rows []ReportRow
	err := db.Table("students s").
		Select("s.id AS student_id, s.name, c.name AS class_name, "+
			"COUNT(ca.id) AS total_classes, "+
			"COALESCE(SUM(CASE WHEN ca.status = 'present' THEN 1 ELSE 0 END), 0) AS present, "+
			"COALESCE(SUM(CASE WHEN ca.status = 'absent' THEN 1 ELSE 0 END), 0) AS absent").
		Joins("JOIN class_enrollments ce ON s.id = ce.student_id").
		Joins("JOIN classes c ON ce.class_id = c.id").
		Joins("LEFT JOIN class_attendances ca ON ca.student_id = s.id AND ca.class_id = c.id "+
			"AND YEAR(ca.attendance_date) = ? AND MONTH(ca.attendance_date) = ?", year, month).
		Where("ce.status = ?", "active").
		Group("s.id, s.name, c.name").
		Order("s.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].AttendanceRate = attendanceRate(rows[i].Present, rows[i].TotalClasses)
	}
	return rows, nil
}
