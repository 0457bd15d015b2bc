package controllers

import (
	"time"

	"musicschool_go/database"
	"musicschool_go/middleware"
	"musicschool_go/models"
	"musicschool_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DashboardController struct{}

// DashboardSummary carries the headline counters of the admin dashboard.
type DashboardSummary struct {
	TotalStudents         int64   `json:"total_students"`
	TotalTeachers         int64   `json:"total_teachers"`
	TotalClasses          int64   `json:"total_classes"`
	PendingPayments       int64   `json:"pending_payments"`
	PendingPaymentsAmount float64 `json:"pending_payments_amount"`
	OverduePayments       int64   `json:"overdue_payments"`
	OverduePaymentsAmount float64 `json:"overdue_payments_amount"`
	MonthRevenue          float64 `json:"month_revenue"`
}

// DefaulterRow is a student with overdue pending payments.
type DefaulterRow struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	OverdueCount int64   `json:"overdue_count"`
	TotalDebt    float64 `json:"total_debt"`
}

// InstrumentEnrollmentRow groups active enrollments by instrument.
type InstrumentEnrollmentRow struct {
	Name  *string `json:"name"`
	Total int64   `json:"total"`
}

// MonthRevenueRow is one point of the six-month revenue series.
type MonthRevenueRow struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

type paymentAggregate struct {
	Total       int64
	TotalAmount float64
}

// monthAttendance mirrors the conditional-SUM query used by the stats
// endpoint, scoped to the current calendar month.
type monthAttendance struct {
	TotalClasses int64 `json:"total_classes" gorm:"column:total_classes"`
	Present      int64 `json:"present"`
	Absent       int64 `json:"absent"`
}

// GetDashboard assembles the school-wide aggregates for admin/employee
func (dc *DashboardController) GetDashboard(c *fiber.Ctx) error {
	db := database.DB
	today := utils.Today()
	monthStart := utils.NormalizeMonth(today)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var summary DashboardSummary
	db.Model(&models.Student{}).Where("active = ?", true).Count(&summary.TotalStudents)
	db.Model(&models.Teacher{}).Where("active = ?", true).Count(&summary.TotalTeachers)
	db.Model(&models.Class{}).Where("active = ?", true).Count(&summary.TotalClasses)

	var pending paymentAggregate
	db.Model(&models.Payment{}).
		Select("COUNT(*) AS total, COALESCE(SUM(amount), 0) AS total_amount").
		Where("status = 'pending'").
		Scan(&pending)
	summary.PendingPayments = pending.Total
	summary.PendingPaymentsAmount = pending.TotalAmount

	var overdue paymentAggregate
	db.Model(&models.Payment{}).
		Select("COUNT(*) AS total, COALESCE(SUM(amount), 0) AS total_amount").
		Where("status = 'pending' AND due_date < ?", today).
		Scan(&overdue)
	summary.OverduePayments = overdue.Total
	summary.OverduePaymentsAmount = overdue.TotalAmount

	db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = 'paid' AND payment_date >= ? AND payment_date < ?", monthStart, nextMonth).
		Scan(&summary.MonthRevenue)

	var upcomingEvents []models.Event
	db.Where("active = ? AND event_date >= ?", true, today).
		Order("event_date ASC").Limit(5).Find(&upcomingEvents)

	var defaulters []DefaulterRow
	db.Table("students s").
		Select("s.id, s.name, s.phone, COUNT(p.id) AS overdue_count, SUM(p.amount) AS total_debt").
		Joins("JOIN payments p ON s.id = p.student_id").
		Where("p.status = 'pending' AND p.due_date < ?", today).
		Group("s.id, s.name, s.phone").
		Order("total_debt DESC").
		Limit(10).
		Scan(&defaulters)

	att := monthAttendanceStats(db, monthStart, nextMonth, 0)

	var byInstrument []InstrumentEnrollmentRow
	db.Table("class_enrollments ce").
		Select("i.name, COUNT(DISTINCT ce.student_id) AS total").
		Joins("JOIN classes c ON ce.class_id = c.id").
		Joins("LEFT JOIN instruments i ON c.instrument_id = i.id").
		Where("ce.status = 'active' AND c.type = 'instrument'").
		Group("i.name").
		Order("total DESC").
		Scan(&byInstrument)

	var revenueByMonth []MonthRevenueRow
	db.Table("payments").
		Select("DATE_FORMAT(payment_date, '%Y-%m') AS month, SUM(amount) AS total").
		Where("status = 'paid' AND payment_date >= ?", today.AddDate(0, -6, 0)).
		Group("DATE_FORMAT(payment_date, '%Y-%m')").
		Order("month ASC").
		Scan(&revenueByMonth)

	return c.JSON(fiber.Map{
		"summary":                   summary,
		"upcoming_events":           upcomingEvents,
		"defaulters":                defaulters,
		"attendance_stats":          att,
		"enrollments_by_instrument": byInstrument,
		"revenue_by_month":          revenueByMonth,
	})
}

// GetStudentDashboard assembles the aggregates scoped to the logged-in student
func (dc *DashboardController) GetStudentDashboard(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil || claims.StudentID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Student profile not found",
		})
	}
	studentID := *claims.StudentID

	db := database.DB
	today := utils.Today()
	monthStart := utils.NormalizeMonth(today)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var myClasses []ClassRow
	db.Table("class_enrollments ce").
		Select("c.*, i.name AS instrument_name, t.name AS teacher_name").
		Joins("JOIN classes c ON ce.class_id = c.id").
		Joins("LEFT JOIN instruments i ON c.instrument_id = i.id").
		Joins("LEFT JOIN teachers t ON c.teacher_id = t.id").
		Where("ce.student_id = ? AND ce.status = 'active'", studentID).
		Scan(&myClasses)

	var myEvents []models.Event
	db.Table("event_participants ep").
		Select("e.*").
		Joins("JOIN events e ON ep.event_id = e.id").
		Where("ep.student_id = ? AND e.event_date >= ?", studentID, today).
		Order("e.event_date ASC").
		Scan(&myEvents)

	var myPayments []models.Payment
	db.Where("student_id = ? AND status = 'pending'", studentID).
		Order("due_date ASC").Find(&myPayments)

	att := monthAttendanceStats(db, monthStart, nextMonth, studentID)

	return c.JSON(fiber.Map{
		"my_classes":  myClasses,
		"my_events":   myEvents,
		"my_payments": myPayments,
		"attendance":  att,
	})
}

// monthAttendanceStats returns the current-month attendance totals, optionally
// scoped to one student (studentID = 0 means school-wide). The rate follows
// the same zero-rows rule as the stats endpoint.
func monthAttendanceStats(db *gorm.DB, monthStart, nextMonth time.Time, studentID uint) fiber.Map {
	query := db.Model(&models.ClassAttendance{}).
		Select("COUNT(*) AS total_classes, " +
			"COALESCE(SUM(CASE WHEN status = 'present' THEN 1 ELSE 0 END), 0) AS present, " +
			"COALESCE(SUM(CASE WHEN status = 'absent' THEN 1 ELSE 0 END), 0) AS absent").
		Where("attendance_date >= ? AND attendance_date < ?", monthStart, nextMonth)
	if studentID != 0 {
		query = query.Where("student_id = ?", studentID)
	}

	var att monthAttendance
	query.Scan(&att)

	return fiber.Map{
		"total_classes":   att.TotalClasses,
		"present":         att.Present,
		"absent":          att.Absent,
		"attendance_rate": attendanceRate(att.Present, att.TotalClasses),
	}
}
