package services

import (
	"errors"
	"testing"
	"time"

	"musicschool_go/models"
)

func TestReceiptNumber(t *testing.T) {
	tests := []struct {
		name        string
		paymentID   uint
		confirmedAt time.Time
		expected    string
	}{
		{
			name:        "single digit id",
			paymentID:   7,
			confirmedAt: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			expected:    "REC-20240315-7",
		},
		{
			name:        "large id",
			paymentID:   10432,
			confirmedAt: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			expected:    "REC-20251201-10432",
		},
		{
			name:        "date carries zero padding",
			paymentID:   1,
			confirmedAt: time.Date(2024, 1, 5, 23, 59, 0, 0, time.UTC),
			expected:    "REC-20240105-1",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := ReceiptNumber(tc.paymentID, tc.confirmedAt)
			if got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestPlanMonthlyPaymentsFirstRun(t *testing.T) {
	refMonth := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	enrollments := []billableEnrollment{
		{StudentID: 1, MonthlyFee: 150},
		{StudentID: 2, MonthlyFee: 200},
		{StudentID: 3, MonthlyFee: 150},
	}

	toCreate, skipped := planMonthlyPayments(enrollments, map[uint]bool{}, refMonth, dueDate)
	if len(toCreate) != 3 || skipped != 0 {
		t.Fatalf("expected 3 created and 0 skipped, got %d and %d", len(toCreate), skipped)
	}
	for i, payment := range toCreate {
		if payment.StudentID != enrollments[i].StudentID {
			t.Fatalf("expected student %d, got %d", enrollments[i].StudentID, payment.StudentID)
		}
		if payment.Amount != enrollments[i].MonthlyFee {
			t.Fatalf("expected amount %.2f, got %.2f", enrollments[i].MonthlyFee, payment.Amount)
		}
		if !payment.ReferenceMonth.Equal(refMonth) || !payment.DueDate.Equal(dueDate) {
			t.Fatalf("unexpected dates on payment for student %d", payment.StudentID)
		}
		if payment.Status != "pending" {
			t.Fatalf("expected pending status, got %s", payment.Status)
		}
	}
}

func TestPlanMonthlyPaymentsSecondRunIsIdempotent(t *testing.T) {
	refMonth := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	enrollments := []billableEnrollment{
		{StudentID: 1, MonthlyFee: 150},
		{StudentID: 2, MonthlyFee: 200},
		{StudentID: 3, MonthlyFee: 150},
	}

	// First run charges everyone.
	first, _ := planMonthlyPayments(enrollments, map[uint]bool{}, refMonth, dueDate)
	charged := make(map[uint]bool, len(first))
	for _, payment := range first {
		charged[payment.StudentID] = true
	}

	// Second run over the same month plans nothing new.
	second, skipped := planMonthlyPayments(enrollments, charged, refMonth, dueDate)
	if len(second) != 0 {
		t.Fatalf("expected no new payments on second run, got %d", len(second))
	}
	if skipped != len(enrollments) {
		t.Fatalf("expected %d skipped, got %d", len(enrollments), skipped)
	}
}

func TestPlanMonthlyPaymentsPartiallyCharged(t *testing.T) {
	refMonth := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	enrollments := []billableEnrollment{
		{StudentID: 1, MonthlyFee: 150},
		{StudentID: 2, MonthlyFee: 200},
	}

	toCreate, skipped := planMonthlyPayments(enrollments, map[uint]bool{1: true}, refMonth, dueDate)
	if len(toCreate) != 1 || skipped != 1 {
		t.Fatalf("expected 1 created and 1 skipped, got %d and %d", len(toCreate), skipped)
	}
	if toCreate[0].StudentID != 2 {
		t.Fatalf("expected student 2 to be charged, got %d", toCreate[0].StudentID)
	}
}

func TestEnsureUnpaid(t *testing.T) {
	pending := models.Payment{Status: "pending"}
	if err := ensureUnpaid(&pending); err != nil {
		t.Fatalf("unexpected error for pending payment: %v", err)
	}

	paid := models.Payment{Status: "paid"}
	if err := ensureUnpaid(&paid); !errors.Is(err, ErrPaymentAlreadyPaid) {
		t.Fatalf("expected ErrPaymentAlreadyPaid, got %v", err)
	}
}

func TestDueDate(t *testing.T) {
	tests := []struct {
		name           string
		referenceMonth time.Time
		dueDay         int
		expected       time.Time
	}{
		{
			name:           "mid month reference collapses to due day",
			referenceMonth: time.Date(2024, 3, 17, 14, 30, 0, 0, time.UTC),
			dueDay:         10,
			expected:       time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:           "first of month reference",
			referenceMonth: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			dueDay:         28,
			expected:       time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:           "due day one",
			referenceMonth: time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC),
			dueDay:         1,
			expected:       time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := DueDate(tc.referenceMonth, tc.dueDay)
			if !got.Equal(tc.expected) {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}
