package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"stresscheck-go/internal/config"
	"stresscheck-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	payloads []NotificationPayload
	fail     bool
}

func (n *recordingNotifier) Send(ctx context.Context, payload NotificationPayload) error {
	n.payloads = append(n.payloads, payload)
	if n.fail {
		return errors.New("webhook down")
	}
	return nil
}

func newTestAlertService(notifier Notifier) *AlertService {
	svc := NewAlertService(zap.NewNop(), notifier)
	svc.now = fixedClock(2026, time.August, 15)
	return svc
}

func seedRoster(t *testing.T, companyID uuid.UUID, count int) []*models.User {
	t.Helper()
	users := make([]*models.User, count)
	for i := range users {
		users[i] = createEmployee(t, companyID, nil, fmt.Sprintf("u%d@roster.test", i))
	}
	return users
}

func TestEvaluateHighStressAndCompletionAlerts(t *testing.T) {
	setupTestDB(t)
	company := createCompany(t, "Acme")
	users := seedRoster(t, company.ID, 10)

	period := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	createCheck(t, users[0].ID, period, 180, true)

	svc := newTestAlertService(nil)
	alerts, err := svc.Evaluate(testCtx, company.ID, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2: %+v", len(alerts), alerts)
	}

	highStress := alerts[0]
	wantID := fmt.Sprintf("hs-%s-2026-08-01", company.ID)
	if highStress.ID != wantID {
		t.Errorf("alert id = %q, want %q", highStress.ID, wantID)
	}
	if highStress.Level != models.AlertHigh {
		t.Errorf("high-stress alert level = %q, want high", highStress.Level)
	}
	if !strings.Contains(highStress.Message, "10.0%") {
		t.Errorf("high-stress message = %q, want 10.0%% rate", highStress.Message)
	}

	completion := alerts[1]
	if completion.ID != fmt.Sprintf("cr-%s-2026-08-01", company.ID) {
		t.Errorf("completion alert id = %q", completion.ID)
	}
	if completion.Level != models.AlertHigh {
		t.Errorf("completion alert level = %q, want high below half the roster", completion.Level)
	}
	if !strings.Contains(completion.Message, "9 employees") {
		t.Errorf("completion message = %q, want 9 remaining", completion.Message)
	}
}

func TestEvaluateLowRateIsInformational(t *testing.T) {
	setupTestDB(t)
	company := createCompany(t, "Acme")
	users := seedRoster(t, company.ID, 25)

	period := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	createCheck(t, users[0].ID, period, 180, true)
	for _, user := range users[1:20] {
		createCheck(t, user.ID, period, 90, false)
	}

	svc := newTestAlertService(nil)
	alerts, err := svc.Evaluate(testCtx, company.ID, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// 1/25 high stress stays under the 5% threshold, 20/25 completion meets
	// the 80% bar, one period means no trend.
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1: %+v", len(alerts), alerts)
	}
	if !strings.HasPrefix(alerts[0].ID, "hs-low-") {
		t.Errorf("alert id = %q, want hs-low- prefix", alerts[0].ID)
	}
	if alerts[0].Level != models.AlertLow {
		t.Errorf("alert level = %q, want low", alerts[0].Level)
	}
	if !strings.Contains(alerts[0].Message, "4.0%") {
		t.Errorf("message = %q, want 4.0%% rate", alerts[0].Message)
	}
}

func TestEvaluateCompletionMediumSeverity(t *testing.T) {
	setupTestDB(t)
	company := createCompany(t, "Acme")
	users := seedRoster(t, company.ID, 10)

	period := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	for _, user := range users[:6] {
		createCheck(t, user.ID, period, 90, false)
	}

	svc := newTestAlertService(nil)
	alerts, err := svc.Evaluate(testCtx, company.ID, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1: %+v", len(alerts), alerts)
	}
	if !strings.HasPrefix(alerts[0].ID, "cr-") || alerts[0].Level != models.AlertMedium {
		t.Errorf("alert = %+v, want medium cr- alert", alerts[0])
	}
}

func TestEvaluateScoreTrend(t *testing.T) {
	setupTestDB(t)
	company := createCompany(t, "Acme")
	users := seedRoster(t, company.ID, 2)

	july := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	august := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	createCheck(t, users[0].ID, july, 100, false)
	createCheck(t, users[1].ID, july, 100, false)
	createCheck(t, users[0].ID, august, 125, false)
	createCheck(t, users[1].ID, august, 125, false)

	svc := newTestAlertService(nil)
	alerts, err := svc.Evaluate(testCtx, company.ID, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	var trend *models.Alert
	for i := range alerts {
		if strings.HasPrefix(alerts[i].ID, "sd-") {
			trend = &alerts[i]
		}
	}
	if trend == nil {
		t.Fatalf("no deterioration alert in %+v", alerts)
	}
	// +25% crosses the 20% escalation bar.
	if trend.Level != models.AlertHigh {
		t.Errorf("trend level = %q, want high", trend.Level)
	}
	if !strings.Contains(trend.Message, "25.0%") {
		t.Errorf("trend message = %q, want 25.0%% change", trend.Message)
	}
	if trend.ID != fmt.Sprintf("sd-%s-2026-08-01", company.ID) {
		t.Errorf("trend id = %q", trend.ID)
	}
}

func TestEvaluateScoreImprovement(t *testing.T) {
	setupTestDB(t)
	company := createCompany(t, "Acme")
	users := seedRoster(t, company.ID, 2)

	july := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	august := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	createCheck(t, users[0].ID, july, 100, false)
	createCheck(t, users[1].ID, july, 100, false)
	createCheck(t, users[0].ID, august, 85, false)
	createCheck(t, users[1].ID, august, 85, false)

	svc := newTestAlertService(nil)
	alerts, err := svc.Evaluate(testCtx, company.ID, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	var improvement *models.Alert
	for i := range alerts {
		if strings.HasPrefix(alerts[i].ID, "si-") {
			improvement = &alerts[i]
		}
	}
	if improvement == nil {
		t.Fatalf("no improvement alert in %+v", alerts)
	}
	if improvement.Level != models.AlertLow {
		t.Errorf("improvement level = %q, want low", improvement.Level)
	}
	if !strings.Contains(improvement.Message, "15.0%") {
		t.Errorf("improvement message = %q, want 15.0%% change", improvement.Message)
	}
}

func TestEvaluateDispatchesEachAlertOnce(t *testing.T) {
	setupTestDB(t)
	config.Conf.Notifications.Enabled = true
	company := createCompany(t, "Acme")
	users := seedRoster(t, company.ID, 10)

	period := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	createCheck(t, users[0].ID, period, 180, true)

	notifier := &recordingNotifier{}
	svc := newTestAlertService(notifier)

	if _, err := svc.Evaluate(testCtx, company.ID, false); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(notifier.payloads) != 2 {
		t.Fatalf("dispatched %d notifications, want 2", len(notifier.payloads))
	}
	if notifier.payloads[0].UrgencyLevel != 5 {
		t.Errorf("high alert urgency = %d, want 5", notifier.payloads[0].UrgencyLevel)
	}

	// Re-evaluation of the same data must not notify again.
	if _, err := svc.Evaluate(testCtx, company.ID, false); err != nil {
		t.Fatalf("second Evaluate: %v", err)
	}
	if len(notifier.payloads) != 2 {
		t.Errorf("re-evaluation dispatched %d extra notifications", len(notifier.payloads)-2)
	}
}

func TestEvaluateMarksNotifiedEvenOnDeliveryFailure(t *testing.T) {
	setupTestDB(t)
	config.Conf.Notifications.Enabled = true
	company := createCompany(t, "Acme")
	users := seedRoster(t, company.ID, 10)

	period := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	createCheck(t, users[0].ID, period, 180, true)

	notifier := &recordingNotifier{fail: true}
	svc := newTestAlertService(notifier)
	if _, err := svc.Evaluate(testCtx, company.ID, false); err != nil {
		t.Fatalf("Evaluate with failing notifier: %v", err)
	}
	attempts := len(notifier.payloads)
	if attempts == 0 {
		t.Fatal("failing notifier was never invoked")
	}

	// A broken webhook must not cause redelivery on the next evaluation.
	if _, err := svc.Evaluate(testCtx, company.ID, false); err != nil {
		t.Fatalf("second Evaluate: %v", err)
	}
	if len(notifier.payloads) != attempts {
		t.Errorf("failed alerts were redispatched: %d attempts, then %d", attempts, len(notifier.payloads))
	}
}

func TestMarkReadFiltersAlerts(t *testing.T) {
	setupTestDB(t)
	company := createCompany(t, "Acme")
	users := seedRoster(t, company.ID, 10)

	period := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	createCheck(t, users[0].ID, period, 180, true)

	svc := newTestAlertService(nil)
	alerts, err := svc.Evaluate(testCtx, company.ID, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2", len(alerts))
	}

	if err := svc.MarkRead(testCtx, alerts[0].ID, company.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	unread, err := svc.Evaluate(testCtx, company.ID, false)
	if err != nil {
		t.Fatalf("Evaluate after MarkRead: %v", err)
	}
	if len(unread) != 1 || unread[0].ID == alerts[0].ID {
		t.Errorf("unread alerts = %+v, want the read one filtered", unread)
	}

	all, err := svc.Evaluate(testCtx, company.ID, true)
	if err != nil {
		t.Fatalf("Evaluate includeRead: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("includeRead returned %d alerts, want 2", len(all))
	}
	var readCount int
	for _, alert := range all {
		if alert.Read {
			readCount++
		}
	}
	if readCount != 1 {
		t.Errorf("read flags = %d, want 1", readCount)
	}

	if err := svc.MarkUnread(testCtx, alerts[0].ID, company.ID); err != nil {
		t.Fatalf("MarkUnread: %v", err)
	}
	restored, err := svc.Evaluate(testCtx, company.ID, false)
	if err != nil {
		t.Fatalf("Evaluate after MarkUnread: %v", err)
	}
	if len(restored) != 2 {
		t.Errorf("got %d alerts after MarkUnread, want 2", len(restored))
	}
}
