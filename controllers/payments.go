package controllers

import (
	"errors"
	"strconv"
	"time"

	"musicschool_go/config"
	"musicschool_go/database"
	"musicschool_go/middleware"
	"musicschool_go/models"
	"musicschool_go/services"
	"musicschool_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PaymentController struct{}

// PaymentRow is a payment list row with the student's name joined in.
type PaymentRow struct {
	models.Payment
	StudentName string `json:"student_name"`
}

// ReceiptRow carries the receipt snapshot together with how and when the
// underlying payment was settled.
type ReceiptRow struct {
	models.Receipt
	PaymentMethod string     `json:"payment_method"`
	PaymentDate   *time.Time `json:"payment_date"`
}

// GetPayments returns payments filtered by status, student and reference month
func (pc *PaymentController) GetPayments(c *fiber.Ctx) error {
	query := database.DB.Table("payments p").
		Select("p.*, s.name AS student_name").
		Joins("JOIN students s ON p.student_id = s.id")

	if status := c.Query("status"); status != "" {
		query = query.Where("p.status = ?", status)
	}
	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("p.student_id = ?", studentID)
	}
	if month := c.Query("month"); month != "" {
		if year := c.Query("year"); year != "" {
			query = query.Where("MONTH(p.reference_month) = ? AND YEAR(p.reference_month) = ?", month, year)
		}
	}

	var payments []PaymentRow
	if err := query.Order("p.due_date DESC").Scan(&payments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payments",
		})
	}

	return c.JSON(payments)
}

// GetPayment returns a single payment with its student and receipt
func (pc *PaymentController) GetPayment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment ID",
		})
	}

	var payment models.Payment
	if err := database.DB.Preload("Student").Preload("Receipt").
		First(&payment, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Payment not found",
		})
	}

	return c.JSON(payment)
}

type CreatePaymentRequest struct {
	StudentID      uint    `json:"student_id" validate:"required"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	DueDate        string  `json:"due_date" validate:"required"`
	ReferenceMonth string  `json:"reference_month" validate:"required"`
	Notes          string  `json:"notes"`
}

// CreatePayment creates a single ad-hoc charge for a student
func (pc *PaymentController) CreatePayment(c *fiber.Ctx) error {
	var req CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	dueDate := utils.ParseDate(req.DueDate)
	refMonth := utils.ParseDate(req.ReferenceMonth)
	if dueDate == nil || refMonth == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid due_date or reference_month",
		})
	}

	payment := models.Payment{
		StudentID:      req.StudentID,
		Amount:         req.Amount,
		DueDate:        *dueDate,
		ReferenceMonth: utils.NormalizeMonth(*refMonth),
		Status:         "pending",
		Notes:          req.Notes,
	}

	if err := database.DB.Create(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Student already has a payment for this month",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create payment",
		})
	}

	middleware.LogActivity(c, "CREATE", "payments", payment.ID)

	return c.Status(fiber.StatusCreated).JSON(payment)
}

// UpdatePaymentRequest covers the plain-CRUD side of payments. Setting
// status to "paid" here does not issue a receipt; MarkAsPaid is the only
// path that does.
type UpdatePaymentRequest struct {
	Amount        *float64 `json:"amount"`
	DueDate       *string  `json:"due_date"`
	Status        *string  `json:"status" validate:"omitempty,oneof=pending paid"`
	PaymentDate   *string  `json:"payment_date"`
	PaymentMethod *string  `json:"payment_method"`
	Notes         *string  `json:"notes"`
}

// UpdatePayment partially updates amount, due date or notes
func (pc *PaymentController) UpdatePayment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment ID",
		})
	}

	var payment models.Payment
	if err := database.DB.First(&payment, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Payment not found",
		})
	}

	var req UpdatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	updates := map[string]interface{}{}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.DueDate != nil {
		if t := utils.ParseDate(*req.DueDate); t != nil {
			updates["due_date"] = *t
		}
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.PaymentDate != nil {
		if t := utils.ParseDate(*req.PaymentDate); t != nil {
			updates["payment_date"] = *t
		}
	}
	if req.PaymentMethod != nil {
		updates["payment_method"] = *req.PaymentMethod
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&payment).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update payment",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "payments", payment.ID)

	return c.JSON(payment)
}

// GetOverdue returns pending payments whose due date has already passed
func (pc *PaymentController) GetOverdue(c *fiber.Ctx) error {
	var payments []PaymentRow
	err := database.DB.Table("payments p").
		Select("p.*, s.name AS student_name").
		Joins("JOIN students s ON p.student_id = s.id").
		Where("p.status = 'pending' AND p.due_date < ?", utils.Today()).
		Order("p.due_date ASC").
		Scan(&payments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch overdue payments",
		})
	}

	return c.JSON(payments)
}

type MarkAsPaidRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
	PaymentDate   string `json:"payment_date"`
	Notes         string `json:"notes"`
}

// MarkAsPaid confirms a payment and issues its receipt
func (pc *PaymentController) MarkAsPaid(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment ID",
		})
	}

	var req MarkAsPaidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	paymentDate := time.Now()
	if req.PaymentDate != "" {
		if t := utils.ParseDate(req.PaymentDate); t != nil {
			paymentDate = *t
		}
	}

	billing := services.NewBillingService(database.DB)
	receiptNumber, err := billing.MarkAsPaid(uint(id), req.PaymentMethod, paymentDate, req.Notes)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Payment not found",
			})
		}
		if errors.Is(err, services.ErrPaymentAlreadyPaid) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Payment is already marked as paid",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to mark payment as paid",
		})
	}

	middleware.LogActivity(c, "UPDATE", "payments", uint(id))

	return c.JSON(fiber.Map{
		"message":        "Payment marked as paid",
		"receipt_number": receiptNumber,
	})
}

type GenerateMonthlyRequest struct {
	Month  int `json:"month" validate:"required,min=1,max=12"`
	Year   int `json:"year" validate:"required,min=2000"`
	DueDay int `json:"due_day" validate:"omitempty,min=1,max=28"`
}

// GenerateMonthly creates the pending charges for a reference month
func (pc *PaymentController) GenerateMonthly(c *fiber.Ctx) error {
	var req GenerateMonthlyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	refMonth := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	dueDay := req.DueDay
	if dueDay == 0 {
		dueDay = config.AppConfig.BillingDueDay
	}

	billing := services.NewBillingService(database.DB)
	created, skipped, err := billing.GenerateMonthlyPayments(refMonth, dueDay)
	if err != nil {
		if errors.Is(err, services.ErrNoActiveEnrollments) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No active enrollments found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate monthly payments",
		})
	}

	middleware.LogActivity(c, "CREATE", "payments", 0)

	return c.JSON(fiber.Map{
		"message": "Monthly payments generated",
		"created": created,
		"skipped": skipped,
	})
}

// GetReceipt returns the issued receipt for a payment, 404 until issued
func (pc *PaymentController) GetReceipt(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment ID",
		})
	}

	var receipt ReceiptRow
	dbErr := database.DB.Table("receipts r").
		Select("r.*, p.payment_method, p.payment_date").
		Joins("JOIN payments p ON r.payment_id = p.id").
		Where("r.payment_id = ?", uint(id)).
		Take(&receipt).Error
	if dbErr != nil {
		if errors.Is(dbErr, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Receipt not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch receipt",
		})
	}

	return c.JSON(receipt)
}
