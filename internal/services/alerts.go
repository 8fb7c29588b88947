package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"stresscheck-go/internal/config"
	"stresscheck-go/internal/models"
	"stresscheck-go/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Alert thresholds. Rates are fractions, not percentages.
const (
	highStressRateThreshold  = 0.05
	lowCompletionThreshold   = 0.80
	criticalCompletionLimit  = 0.50
	scoreChangeThreshold     = 0.10
	scoreChangeHighThreshold = 0.20
)

const companyWideScope = "Company-wide"

// AlertService evaluates company health rules and produces alerts with
// deterministic ids, so re-evaluating the same data yields the same alert
// set. Read and notified state lives in storage, keyed by alert id.
type AlertService struct {
	log      *zap.Logger
	notifier Notifier
	now      func() time.Time
}

func NewAlertService(log *zap.Logger, notifier Notifier) *AlertService {
	return &AlertService{
		log:      log,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate runs every alert rule for the company, applies persisted read
// state, dispatches alerts that have never been notified, and returns the
// result sorted by severity (high first, creation date as tiebreak). Read
// alerts are dropped unless includeRead is set.
func (s *AlertService) Evaluate(ctx context.Context, companyID uuid.UUID, includeRead bool) ([]models.Alert, error) {
	var alerts []models.Alert

	highStress, err := s.checkHighStressRate(ctx, companyID)
	if err != nil {
		return nil, NewDataAccessError(err)
	}
	alerts = append(alerts, highStress...)

	completion, err := s.checkCompletionRate(ctx, companyID)
	if err != nil {
		return nil, NewDataAccessError(err)
	}
	alerts = append(alerts, completion...)

	trend, err := s.checkScoreTrend(ctx, companyID)
	if err != nil {
		return nil, NewDataAccessError(err)
	}
	alerts = append(alerts, trend...)

	ids := make([]string, len(alerts))
	for i, alert := range alerts {
		ids[i] = alert.ID
	}
	states, err := repository.GetAlertStates(ctx, ids)
	if err != nil {
		return nil, NewDataAccessError(err)
	}
	for i := range alerts {
		if state, ok := states[alerts[i].ID]; ok {
			alerts[i].Read = state.ReadAt != nil
		}
	}

	if !includeRead {
		unread := alerts[:0]
		for _, alert := range alerts {
			if !alert.Read {
				unread = append(unread, alert)
			}
		}
		alerts = unread
	}

	severityRank := map[string]int{models.AlertHigh: 0, models.AlertMedium: 1, models.AlertLow: 2}
	sort.SliceStable(alerts, func(i, j int) bool {
		ri, ok := severityRank[alerts[i].Level]
		if !ok {
			ri = 3
		}
		rj, ok := severityRank[alerts[j].Level]
		if !ok {
			rj = 3
		}
		if ri != rj {
			return ri < rj
		}
		return alerts[i].CreatedAt.Before(alerts[j].CreatedAt)
	})

	if err := s.dispatch(ctx, companyID, alerts, states); err != nil {
		return nil, err
	}

	return alerts, nil
}

// dispatch hands never-notified alerts to the notifier and records them as
// notified afterwards, delivery failure included: a broken webhook must not
// turn into a retry storm on every dashboard load.
func (s *AlertService) dispatch(ctx context.Context, companyID uuid.UUID, alerts []models.Alert, states map[string]models.AlertState) error {
	if s.notifier == nil || !config.Conf.Notifications.Enabled {
		return nil
	}

	urgency := map[string]int{models.AlertHigh: 5, models.AlertMedium: 3, models.AlertLow: 2}
	for _, alert := range alerts {
		if state, ok := states[alert.ID]; ok && state.NotifiedAt != nil {
			continue
		}
		level, ok := urgency[alert.Level]
		if !ok {
			level = 3
		}
		if err := s.notifier.Send(ctx, NotificationPayload{
			Category:     CategorySystemNotification,
			Title:        "Stress check alert",
			Message:      alert.Message,
			Department:   alert.DepartmentName,
			UrgencyLevel: level,
		}); err != nil {
			s.log.Error("Alert notification failed",
				zap.String("alertID", alert.ID),
				zap.Error(err),
			)
		}
		if err := repository.MarkAlertNotified(ctx, alert.ID, companyID); err != nil {
			return NewDataAccessError(err)
		}
	}
	return nil
}

// checkHighStressRate alerts on the share of high-stress results in the
// most recent period with data. At or above the threshold the alert is
// high severity; below it any non-zero count still surfaces as low.
func (s *AlertService) checkHighStressRate(ctx context.Context, companyID uuid.UUID) ([]models.Alert, error) {
	employees, err := repository.ListEmployees(ctx, companyID, nil)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, nil
	}

	latest, err := repository.LatestPeriod(ctx, companyID)
	if err != nil || latest == nil {
		return nil, err
	}

	count, err := repository.CountHighStressForPeriod(ctx, companyID, *latest)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	rate := float64(count) / float64(len(employees))
	percent := roundRate(rate)
	if rate >= highStressRateThreshold {
		return []models.Alert{{
			ID:             fmt.Sprintf("hs-%s-%s", companyID, latest.Format("2006-01-02")),
			DepartmentName: companyWideScope,
			Level:          models.AlertHigh,
			Message:        fmt.Sprintf("%d high-stress employees detected (%.1f%%). Prompt follow-up is recommended.", count, percent),
			CreatedAt:      s.today(),
		}}, nil
	}
	return []models.Alert{{
		ID:             fmt.Sprintf("hs-low-%s-%s", companyID, latest.Format("2006-01-02")),
		DepartmentName: companyWideScope,
		Level:          models.AlertLow,
		Message:        fmt.Sprintf("%d high-stress employees detected (%.1f%%).", count, percent),
		CreatedAt:      s.today(),
	}}, nil
}

// checkCompletionRate alerts when too few employees have submitted for the
// current calendar period. Below half the roster it escalates to high.
func (s *AlertService) checkCompletionRate(ctx context.Context, companyID uuid.UUID) ([]models.Alert, error) {
	employees, err := repository.ListEmployees(ctx, companyID, nil)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, nil
	}

	period := PeriodOf(s.now())
	completed, err := repository.CountDistinctRespondentsForPeriod(ctx, companyID, period)
	if err != nil {
		return nil, err
	}

	rate := float64(completed) / float64(len(employees))
	if rate >= lowCompletionThreshold {
		return nil, nil
	}

	level := models.AlertMedium
	if rate < criticalCompletionLimit {
		level = models.AlertHigh
	}
	remaining := int64(len(employees)) - completed
	return []models.Alert{{
		ID:             fmt.Sprintf("cr-%s-%s", companyID, period.Format("2006-01-02")),
		DepartmentName: companyWideScope,
		Level:          level,
		Message:        fmt.Sprintf("Stress check completion rate is %.1f%%. Please encourage the %d employees who have not yet taken it.", roundRate(rate), remaining),
		CreatedAt:      s.today(),
	}}, nil
}

// checkScoreTrend compares the average total score of the two most recent
// periods. A worsening of 10% or more alerts (20% escalates to high); an
// improvement of the same magnitude surfaces as a low informational alert.
func (s *AlertService) checkScoreTrend(ctx context.Context, companyID uuid.UUID) ([]models.Alert, error) {
	periods, err := repository.RecentPeriods(ctx, companyID, 2)
	if err != nil {
		return nil, err
	}
	if len(periods) < 2 {
		return nil, nil
	}

	currentAvg, err := repository.AverageTotalScoreForPeriod(ctx, companyID, periods[0])
	if err != nil {
		return nil, err
	}
	previousAvg, err := repository.AverageTotalScoreForPeriod(ctx, companyID, periods[1])
	if err != nil {
		return nil, err
	}
	if previousAvg == 0 {
		return nil, nil
	}

	change := (currentAvg - previousAvg) / previousAvg
	switch {
	case change >= scoreChangeThreshold:
		level := models.AlertMedium
		if change >= scoreChangeHighThreshold {
			level = models.AlertHigh
		}
		return []models.Alert{{
			ID:             fmt.Sprintf("sd-%s-%s", companyID, periods[0].Format("2006-01-02")),
			DepartmentName: companyWideScope,
			Level:          level,
			Message:        fmt.Sprintf("Average stress score worsened by %.1f%% compared to the previous period. Consider workplace improvements.", roundRate(change)),
			CreatedAt:      s.today(),
		}}, nil
	case change <= -scoreChangeThreshold:
		return []models.Alert{{
			ID:             fmt.Sprintf("si-%s-%s", companyID, periods[0].Format("2006-01-02")),
			DepartmentName: companyWideScope,
			Level:          models.AlertLow,
			Message:        fmt.Sprintf("Average stress score improved by %.1f%% compared to the previous period.", roundRate(-change)),
			CreatedAt:      s.today(),
		}}, nil
	default:
		return nil, nil
	}
}

// MarkRead records an alert as read for the company.
func (s *AlertService) MarkRead(ctx context.Context, alertID string, companyID uuid.UUID) error {
	if err := repository.MarkAlertRead(ctx, alertID, companyID); err != nil {
		return NewDataAccessError(err)
	}
	return nil
}

// MarkUnread returns an alert to the unread state.
func (s *AlertService) MarkUnread(ctx context.Context, alertID string, companyID uuid.UUID) error {
	if err := repository.MarkAlertUnread(ctx, alertID, companyID); err != nil {
		return NewDataAccessError(err)
	}
	return nil
}

func (s *AlertService) today() time.Time {
	t := s.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// roundRate converts a fraction to a percentage rounded to one decimal.
func roundRate(rate float64) float64 {
	return math.Round(rate*1000) / 10
}
