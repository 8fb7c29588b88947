package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stresscheck-go/internal/models"
	"stresscheck-go/internal/repository"
	"stresscheck-go/internal/scoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmissionService runs the stress-check submission workflow: validate,
// score, classify, persist. The assessment period is always derived from the
// server clock, never supplied by the caller.
type SubmissionService struct {
	log *zap.Logger
	now func() time.Time
}

func NewSubmissionService(log *zap.Logger) *SubmissionService {
	return &SubmissionService{
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SubmissionResult is returned to the respondent after a successful submit.
type SubmissionResult struct {
	ID           string              `json:"id"`
	Period       time.Time           `json:"period"`
	IsHighStress bool                `json:"is_high_stress"`
	Scores       scoring.ScoreResult `json:"scores"`
}

// PeriodOf truncates a point in time to its assessment period, the first
// day of the calendar month in UTC.
func PeriodOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// CurrentPeriod returns the period a submission made now would fall into.
func (s *SubmissionService) CurrentPeriod() time.Time {
	return PeriodOf(s.now())
}

// ValidateAnswers enforces the submission contract: exactly 57 answers, ids
// drawn from the fixed question set, every value in [1,4].
func ValidateAnswers(answers models.AnswerMap) error {
	if len(answers) != scoring.QuestionCount {
		return NewValidationError("please answer all questions")
	}
	for i := 1; i <= scoring.QuestionCount; i++ {
		id := scoring.QuestionID(i)
		value, ok := answers[id]
		if !ok {
			// 57 entries but a canonical key missing means a malformed id
			// is taking its place.
			return NewValidationError("please answer all questions")
		}
		if value < scoring.MinAnswer || value > scoring.MaxAnswer {
			return NewFieldValidationError(fmt.Sprintf("please select a valid answer for %s", id), id)
		}
	}
	return nil
}

// ValidateDraftAnswers enforces only the per-answer rules; drafts may be
// partial but share the id and range constraints with submissions.
func ValidateDraftAnswers(answers models.AnswerMap) error {
	valid := make(map[string]struct{}, scoring.QuestionCount)
	for i := 1; i <= scoring.QuestionCount; i++ {
		valid[scoring.QuestionID(i)] = struct{}{}
	}
	for id, value := range answers {
		if _, ok := valid[id]; !ok {
			return NewFieldValidationError(fmt.Sprintf("unknown question id %s", id), id)
		}
		if value < scoring.MinAnswer || value > scoring.MaxAnswer {
			return NewFieldValidationError(fmt.Sprintf("please select a valid answer for %s", id), id)
		}
	}
	return nil
}

// Submit validates the answer set, computes scores and the high-stress flag,
// and persists the result atomically with the draft cleanup. A second
// submission for the same (subject, period) fails with a duplicate error —
// the storage-level unique index decides, so concurrent submissions cannot
// both succeed.
func (s *SubmissionService) Submit(ctx context.Context, userID uuid.UUID, answers models.AnswerMap) (*SubmissionResult, error) {
	if err := ValidateAnswers(answers); err != nil {
		return nil, err
	}

	period := s.CurrentPeriod()
	scores := scoring.Calculate(answers)
	highStress := scoring.IsHighStress(scores.StressReactionScore, scores.JobStressScore, scores.SupportScore)

	check := &models.StressCheck{
		UserID:       userID,
		Period:       period,
		Answers:      datatypes.NewJSONType(answers),
		TotalScore:   scores.TotalScore,
		IsHighStress: highStress,
	}

	if err := repository.SubmitStressCheckTx(ctx, check); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewDuplicateError("a stress check has already been submitted for this period")
		}
		s.log.Error("Failed to persist stress check",
			zap.String("userID", userID.String()),
			zap.Error(err),
		)
		return nil, NewDataAccessError(err)
	}

	s.log.Info("Stress check submitted",
		zap.String("userID", userID.String()),
		zap.Time("period", period),
		zap.Int("totalScore", scores.TotalScore),
		zap.Bool("highStress", highStress),
	)

	return &SubmissionResult{
		ID:           check.ID.String(),
		Period:       period,
		IsHighStress: highStress,
		Scores:       scores,
	}, nil
}

// AlreadyTaken reports whether the user has a result for the current period.
func (s *SubmissionService) AlreadyTaken(ctx context.Context, userID uuid.UUID) (bool, error) {
	taken, err := repository.HasSubmissionForPeriod(ctx, userID, s.CurrentPeriod())
	if err != nil {
		return false, NewDataAccessError(err)
	}
	return taken, nil
}

// History lists the user's past results, newest first.
func (s *SubmissionService) History(ctx context.Context, userID uuid.UUID) ([]models.StressCheck, error) {
	checks, err := repository.ListStressChecksByUser(ctx, userID)
	if err != nil {
		return nil, NewDataAccessError(err)
	}
	return checks, nil
}

// Draft returns the user's saved draft, or nil when none exists.
func (s *SubmissionService) Draft(ctx context.Context, userID uuid.UUID) (*models.DraftAnswer, error) {
	draft, err := repository.GetDraft(ctx, userID)
	if err != nil {
		return nil, NewDataAccessError(err)
	}
	return draft, nil
}

// SaveDraft validates and stores a partial answer set, replacing any
// previous draft.
func (s *SubmissionService) SaveDraft(ctx context.Context, userID uuid.UUID, answers models.AnswerMap) (*models.DraftAnswer, error) {
	if err := ValidateDraftAnswers(answers); err != nil {
		return nil, err
	}
	draft, err := repository.UpsertDraft(ctx, userID, answers)
	if err != nil {
		return nil, NewDataAccessError(err)
	}
	return draft, nil
}

// DiscardDraft removes the user's draft if one exists.
func (s *SubmissionService) DiscardDraft(ctx context.Context, userID uuid.UUID) error {
	if err := repository.DeleteDraft(ctx, userID); err != nil {
		return NewDataAccessError(err)
	}
	return nil
}

// NonTakenEntry is one employee without a result for the current period.
type NonTakenEntry struct {
	UserID       uuid.UUID  `json:"user_id"`
	Email        string     `json:"email"`
	DepartmentID *uuid.UUID `json:"department_id"`
	LastTaken    *time.Time `json:"last_taken"`
}

// NonTaken lists the company's employees who have not submitted for the
// current period, with the period of their most recent submission if any.
func (s *SubmissionService) NonTaken(ctx context.Context, companyID uuid.UUID) ([]NonTakenEntry, error) {
	users, err := repository.ListNonTaken(ctx, companyID, s.CurrentPeriod())
	if err != nil {
		return nil, NewDataAccessError(err)
	}

	entries := make([]NonTakenEntry, 0, len(users))
	for _, user := range users {
		last, err := repository.LastPeriodForUser(ctx, user.ID)
		if err != nil {
			return nil, NewDataAccessError(err)
		}
		entries = append(entries, NonTakenEntry{
			UserID:       user.ID,
			Email:        user.Email,
			DepartmentID: user.DepartmentID,
			LastTaken:    last,
		})
	}
	return entries, nil
}

// Result fetches one of the user's results and re-derives the sub-scale
// scores from the stored answers (only the total and the flag are persisted).
func (s *SubmissionService) Result(ctx context.Context, id, userID uuid.UUID) (*SubmissionResult, error) {
	check, err := repository.GetStressCheckForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("stress check result not found")
		}
		return nil, NewDataAccessError(err)
	}
	return &SubmissionResult{
		ID:           check.ID.String(),
		Period:       check.Period,
		IsHighStress: check.IsHighStress,
		Scores:       scoring.Calculate(check.Answers.Data()),
	}, nil
}
