package services

import (
	"context"
	"time"

	"stresscheck-go/internal/config"
	"stresscheck-go/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scheduler drives the periodic background work: an hourly alert evaluation
// sweep across every company, and a daily reminder run for employees who
// have not submitted for the current period.
type Scheduler struct {
	log          *zap.Logger
	alertService *AlertService
	emailService *EmailService

	lastReminderDate string
}

func NewScheduler(log *zap.Logger, alertService *AlertService, emailService *EmailService) *Scheduler {
	return &Scheduler{
		log:          log,
		alertService: alertService,
		emailService: emailService,
	}
}

// Start runs the scheduler in a goroutine.
func (s *Scheduler) Start() {
	s.log.Info("Starting background scheduler...")
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			<-ticker.C
			s.runAlertSweep()
			s.runReminderCheck()
		}
	}()
}

// runAlertSweep evaluates alerts for every company so threshold breaches
// are noticed and dispatched even when nobody is looking at a dashboard.
func (s *Scheduler) runAlertSweep() {
	ctx := context.Background()
	companyIDs, err := repository.ListCompanyIDs(ctx)
	if err != nil {
		s.log.Error("Failed to list companies for alert sweep", zap.Error(err))
		return
	}

	for _, companyID := range companyIDs {
		if _, err := s.alertService.Evaluate(ctx, companyID, true); err != nil {
			s.log.Error("Alert evaluation failed",
				zap.String("companyID", companyID.String()),
				zap.Error(err),
			)
		}
	}
}

// runReminderCheck emails employees who have not submitted for the current
// period, once per day, from the configured day of the month onwards.
func (s *Scheduler) runReminderCheck() {
	if !config.Conf.Reminders.Enabled {
		return
	}

	now := time.Now().UTC()
	if now.Day() < config.Conf.Reminders.FromDay {
		return
	}
	today := now.Format("2006-01-02")
	if s.lastReminderDate == today {
		return
	}
	s.lastReminderDate = today

	ctx := context.Background()
	companyIDs, err := repository.ListCompanyIDs(ctx)
	if err != nil {
		s.log.Error("Failed to list companies for reminders", zap.Error(err))
		return
	}

	period := PeriodOf(now)
	for _, companyID := range companyIDs {
		s.sendReminders(ctx, companyID, period)
	}
}

func (s *Scheduler) sendReminders(ctx context.Context, companyID uuid.UUID, period time.Time) {
	users, err := repository.ListNonTaken(ctx, companyID, period)
	if err != nil {
		s.log.Error("Failed to list non-taken employees",
			zap.String("companyID", companyID.String()),
			zap.Error(err),
		)
		return
	}

	for _, user := range users {
		s.emailService.SendReminderEmail(user)
	}
	s.log.Info("Reminder run completed",
		zap.String("companyID", companyID.String()),
		zap.Int("reminded", len(users)),
	)
}
