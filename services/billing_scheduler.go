package services

import (
	"errors"
	"time"

	"musicschool_go/config"
	"musicschool_go/database"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// BillingScheduler runs monthly charge generation on a cron spec. Because
// GenerateMonthlyPayments is idempotent, a manual run for the same month is
// harmless.
type BillingScheduler struct {
	cron    *cron.Cron
	billing *BillingService
}

// NewBillingScheduler creates the scheduler with the configured billing service.
func NewBillingScheduler() *BillingScheduler {
	return &BillingScheduler{
		cron:    cron.New(),
		billing: NewBillingService(database.DB),
	}
}

// Start registers the generation job and starts the cron loop.
func (bsch *BillingScheduler) Start() error {
	spec := config.AppConfig.BillingCronSpec
	_, err := bsch.cron.AddFunc(spec, bsch.runGeneration)
	if err != nil {
		return err
	}

	bsch.cron.Start()
	logrus.WithField("spec", spec).Info("Billing scheduler started")
	return nil
}

// Stop halts the cron loop.
func (bsch *BillingScheduler) Stop() {
	bsch.cron.Stop()
}

func (bsch *BillingScheduler) runGeneration() {
	referenceMonth := time.Now()
	dueDay := config.AppConfig.BillingDueDay

	created, skipped, err := bsch.billing.GenerateMonthlyPayments(referenceMonth, dueDay)
	if err != nil {
		if errors.Is(err, ErrNoActiveEnrollments) {
			logrus.Info("Billing scheduler: no active enrollments, nothing to generate")
			return
		}
		logrus.WithError(err).Error("Billing scheduler: monthly generation failed")
		return
	}

	logrus.WithFields(logrus.Fields{
		"created": created,
		"skipped": skipped,
	}).Info("Billing scheduler: monthly generation finished")
}
