package services

import (
	"sync"
	"testing"
	"time"

	"stresscheck-go/internal/models"
	"stresscheck-go/internal/repository"
	"stresscheck-go/internal/scoring"

	"go.uber.org/zap"
)

func fullAnswers(value int) models.AnswerMap {
	answers := make(models.AnswerMap, scoring.QuestionCount)
	for i := 1; i <= scoring.QuestionCount; i++ {
		answers[scoring.QuestionID(i)] = value
	}
	return answers
}

func newTestSubmissionService() *SubmissionService {
	svc := NewSubmissionService(zap.NewNop())
	svc.now = fixedClock(2026, time.August, 15)
	return svc
}

func TestSubmitScoresAndClearsDraft(t *testing.T) {
	setupTestDB(t)
	company := createCompany(t, "Acme")
	user := createEmployee(t, company.ID, nil, "a@acme.test")

	if _, err := repository.UpsertDraft(testCtx, user.ID, models.AnswerMap{"q1": 2}); err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	svc := newTestSubmissionService()
	result, err := svc.Submit(testCtx, user.ID, fullAnswers(2))
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	wantPeriod := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	if !result.Period.Equal(wantPeriod) {
		t.Errorf("period = %v, want %v", result.Period, wantPeriod)
	}
	if result.Scores.TotalScore != 2*scoring.QuestionCount {
		t.Errorf("total score = %d, want %d", result.Scores.TotalScore, 2*scoring.QuestionCount)
	}
	if result.IsHighStress {
		t.Error("uniform low answers should not be classified high stress")
	}

	draft, err := repository.GetDraft(testCtx, user.ID)
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if draft != nil {
		t.Error("draft should be deleted after a successful submission")
	}
}

func TestSubmitRejectsIncompleteAnswers(t *testing.T) {
	setupTestDB(t)
	company := createCompany(t, "Acme")
	user := createEmployee(t, company.ID, nil, "a@acme.test")

	svc := newTestSubmissionService()

	answers := fullAnswers(2)
	delete(answers, "q30")
	if _, err := svc.Submit(testCtx, user.ID, answers); !IsCode(err, ErrorValidation) {
		t.Errorf("missing answer: got %v, want validation error", err)
	}

	answers = fullAnswers(2)
	answers["q30"] = 5
	_, err := svc.Submit(testCtx, user.ID, answers)
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorValidation || se.Field != "q30" {
		t.Errorf("out-of-range answer: got %v, want validation error on q30", err)
	}

	taken, err := svc.AlreadyTaken(testCtx, user.ID)
	if err != nil {
		t.Fatalf("AlreadyTaken: %v", err)
	}
	if taken {
		t.Error("rejected submissions must not be persisted")
	}
}

func TestSubmitDuplicateSamePeriod(t *testing.T) {
	setupTestDB(t)
	company := createCompany(t, "Acme")
	user := createEmployee(t, company.ID, nil, "a@acme.test")

	svc := newTestSubmissionService()
	if _, err := svc.Submit(testCtx, user.ID, fullAnswers(1)); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	if _, err := svc.Submit(testCtx, user.ID, fullAnswers(3)); !IsCode(err, ErrorDuplicate) {
		t.Errorf("second submission: got %v, want duplicate error", err)
	}

	// A new period opens a new slot.
	svc.now = fixedClock(2026, time.September, 3)
	if _, err := svc.Submit(testCtx, user.ID, fullAnswers(3)); err != nil {
		t.Errorf("next-period submission failed: %v", err)
	}

	history, err := svc.History(testCtx, user.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if !history[0].Period.After(history[1].Period) {
		t.Error("history must be ordered newest first")
	}
}

func TestSubmitConcurrentDuplicate(t *testing.T) {
	setupTestDB(t)
	company := createCompany(t, "Acme")
	user := createEmployee(t, company.ID, nil, "a@acme.test")

	svc := newTestSubmissionService()

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(testCtx, user.ID, fullAnswers(2))
		}(i)
	}
	wg.Wait()

	var successes, duplicates int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case IsCode(err, ErrorDuplicate):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || duplicates != 1 {
		t.Errorf("got %d successes and %d duplicates, want exactly 1 of each", successes, duplicates)
	}

	history, err := svc.History(testCtx, user.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("persisted %d checks, want 1", len(history))
	}
}

func TestNonTakenListsLastSubmission(t *testing.T) {
	setupTestDB(t)
	company := createCompany(t, "Acme")
	fresh := createEmployee(t, company.ID, nil, "fresh@acme.test")
	lapsed := createEmployee(t, company.ID, nil, "lapsed@acme.test")
	current := createEmployee(t, company.ID, nil, "current@acme.test")

	svc := newTestSubmissionService()
	createCheck(t, lapsed.ID, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), 100, false)
	createCheck(t, current.ID, svc.CurrentPeriod(), 100, false)

	entries, err := svc.NonTaken(testCtx, company.ID)
	if err != nil {
		t.Fatalf("NonTaken: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("non-taken count = %d, want 2: %+v", len(entries), entries)
	}

	byID := make(map[string]NonTakenEntry, len(entries))
	for _, entry := range entries {
		byID[entry.Email] = entry
	}
	if entry, ok := byID[fresh.Email]; !ok || entry.LastTaken != nil {
		t.Errorf("never-submitted employee entry = %+v, want nil LastTaken", entry)
	}
	if entry, ok := byID[lapsed.Email]; !ok || entry.LastTaken == nil {
		t.Errorf("lapsed employee entry = %+v, want June period", entry)
	} else if entry.LastTaken.Month() != time.June {
		t.Errorf("lapsed LastTaken = %v, want June", entry.LastTaken)
	}
}

func TestResultRederivesScores(t *testing.T) {
	setupTestDB(t)
	company := createCompany(t, "Acme")
	user := createEmployee(t, company.ID, nil, "a@acme.test")
	other := createEmployee(t, company.ID, nil, "b@acme.test")

	svc := newTestSubmissionService()
	submitted, err := svc.Submit(testCtx, user.ID, fullAnswers(4))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	history, err := svc.History(testCtx, user.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	result, err := svc.Result(testCtx, history[0].ID, user.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if result.Scores != submitted.Scores {
		t.Errorf("re-derived scores %+v, want %+v", result.Scores, submitted.Scores)
	}
	if !result.IsHighStress {
		t.Error("uniform worst-case answers should be classified high stress")
	}

	// Results are private to their owner.
	if _, err := svc.Result(testCtx, history[0].ID, other.ID); !IsCode(err, ErrorNotFound) {
		t.Errorf("cross-user result access: got %v, want not-found error", err)
	}
}
