package services

import (
	"errors"
	"fmt"
	"time"

	"musicschool_go/models"
	"musicschool_go/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// ErrNoActiveEnrollments is returned by GenerateMonthlyPayments when
	// there is nothing to bill.
	ErrNoActiveEnrollments = errors.New("no active enrollments found")

	// ErrPaymentNotFound is returned by MarkAsPaid for an unknown payment id.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPaymentAlreadyPaid is returned by MarkAsPaid when the payment has
	// already been confirmed and its receipt issued.
	ErrPaymentAlreadyPaid = errors.New("payment already paid")
)

// BillingService owns monthly charge generation and payment confirmation.
type BillingService struct {
	db *gorm.DB
}

// NewBillingService creates a BillingService on the given connection.
func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{db: db}
}

// ReceiptNumber builds the deterministic receipt identifier for a payment
// confirmed on the given date.
func ReceiptNumber(paymentID uint, confirmedAt time.Time) string {
	return fmt.Sprintf("REC-%s-%d", confirmedAt.Format("20060102"), paymentID)
}

// DueDate places dueDay inside the reference month.
func DueDate(referenceMonth time.Time, dueDay int) time.Time {
	m := utils.NormalizeMonth(referenceMonth)
	return time.Date(m.Year(), m.Month(), dueDay, 0, 0, 0, 0, m.Location())
}

// billableEnrollment is one distinct (student, fee) pair derived from
// active enrollments in active classes.
type billableEnrollment struct {
	StudentID  uint
	MonthlyFee float64
}

// planMonthlyPayments decides which enrollments become new pending
// payments for the reference month. Students already in the charged set
// are skipped, which is what makes repeated generation runs idempotent:
// a second run over the same month plans zero creations.
func planMonthlyPayments(enrollments []billableEnrollment, charged map[uint]bool, refMonth, dueDate time.Time) (toCreate []models.Payment, skipped int) {
	for _, enrollment := range enrollments {
		if charged[enrollment.StudentID] {
			skipped++
			continue
		}
		toCreate = append(toCreate, models.Payment{
			StudentID:      enrollment.StudentID,
			Amount:         enrollment.MonthlyFee,
			DueDate:        dueDate,
			ReferenceMonth: refMonth,
			Status:         "pending",
		})
	}
	return toCreate, skipped
}

// GenerateMonthlyPayments creates one pending payment per distinct
// (student, monthly fee) pair for the reference month. A student already
// charged for that month is skipped; the (student_id, reference_month)
// unique index backs the existence check under concurrent runs. The whole
// batch commits or rolls back as one transaction.
func (bs *BillingService) GenerateMonthlyPayments(referenceMonth time.Time, dueDay int) (created, skipped int, err error) {
	refMonth := utils.NormalizeMonth(referenceMonth)
	dueDate := DueDate(refMonth, dueDay)

	err = bs.db.Transaction(func(tx *gorm.DB) error {
		var enrollments []billableEnrollment
		if err := tx.Table("class_enrollments ce").
			Distinct("ce.student_id, c.monthly_fee").
			Joins("JOIN classes c ON ce.class_id = c.id").
			Where("ce.status = ? AND c.active = ?", "active", true).
			Scan(&enrollments).Error; err != nil {
			return err
		}

		if len(enrollments) == 0 {
			return ErrNoActiveEnrollments
		}

		var chargedIDs []uint
		if err := tx.Model(&models.Payment{}).
			Where("reference_month = ?", refMonth).
			Pluck("student_id", &chargedIDs).Error; err != nil {
			return err
		}
		charged := make(map[uint]bool, len(chargedIDs))
		for _, id := range chargedIDs {
			charged[id] = true
		}

		toCreate, planSkipped := planMonthlyPayments(enrollments, charged, refMonth, dueDate)
		skipped = planSkipped

		for i := range toCreate {
			if err := tx.Create(&toCreate[i]).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	logrus.WithFields(logrus.Fields{
		"reference_month": refMonth.Format("2006-01"),
		"created":         created,
		"skipped":         skipped,
	}).Info("Monthly payments generated")

	return created, skipped, nil
}

// MarkAsPaid confirms a payment and issues its receipt in one transaction.
// The receipt number is derived from the current date; the receipt row
// snapshots the student name and amount as they are at confirmation time.
func (bs *BillingService) MarkAsPaid(paymentID uint, method string, paymentDate time.Time, notes string) (string, error) {
	receiptNumber := ReceiptNumber(paymentID, time.Now())

	err := bs.db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Preload("Student").First(&payment, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		if err := ensureUnpaid(&payment); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":         "paid",
			"payment_date":   paymentDate,
			"payment_method": method,
			"receipt_number": receiptNumber,
		}
		if notes != "" {
			updates["notes"] = notes
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return err
		}

		receipt := models.Receipt{
			PaymentID:     payment.ID,
			ReceiptNumber: receiptNumber,
			IssueDate:     time.Now(),
			StudentName:   payment.Student.Name,
			Amount:        payment.Amount,
			Description:   fmt.Sprintf("Monthly tuition for %s", payment.ReferenceMonth.Format("January/2006")),
		}
		return tx.Create(&receipt).Error
	})
	if err != nil {
		// Two confirmations racing past the status check collide on the
		// receipts.payment_id unique index; report both the same way.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", ErrPaymentAlreadyPaid
		}
		return "", err
	}

	return receiptNumber, nil
}

// ensureUnpaid rejects confirmation of a payment that is already settled.
func ensureUnpaid(payment *models.Payment) error {
	if payment.Status == "paid" {
		return ErrPaymentAlreadyPaid
	}
	return nil
}
