package repository

import (
	"context"
	"errors"
	"time"

	"stresscheck-go/internal/database"
	"stresscheck-go/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmitStressCheckTx persists a new assessment result and clears the
// subject's draft in a single transaction. The unique (user_id, period)
// index makes the insert the duplicate guard: a second submission for the
// same period fails with gorm.ErrDuplicatedKey and nothing is written.
func SubmitStressCheckTx(ctx context.Context, check *models.StressCheck) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(check).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", check.UserID).Delete(&models.DraftAnswer{}).Error
	})
}

// HasSubmissionForPeriod reports whether the user already has a result for
// the given period. Advisory only; the unique index is the real guard.
func HasSubmissionForPeriod(ctx context.Context, userID uuid.UUID, period time.Time) (bool, error) {
	var count int64
	err := database.DB.WithContext(ctx).Model(&models.StressCheck{}).
		Where("user_id = ? AND period = ?", userID, period).
		Count(&count).Error
	return count > 0, err
}

func ListStressChecksByUser(ctx context.Context, userID uuid.UUID) ([]models.StressCheck, error) {
	var checks []models.StressCheck
	err := database.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("period DESC").
		Find(&checks).Error
	return checks, err
}

func GetStressCheckForUser(ctx context.Context, id, userID uuid.UUID) (*models.StressCheck, error) {
	var check models.StressCheck
	result := database.DB.WithContext(ctx).First(&check, "id = ? AND user_id = ?", id, userID)
	return &check, result.Error
}

// LastPeriodForUser returns the user's most recent submission period, or nil
// if they have never submitted.
func LastPeriodForUser(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	var check models.StressCheck
	err := database.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("period DESC").
		First(&check).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &check.Period, nil
}

// companyScope joins stress_checks to the company roster so all aggregate
// queries share the same tenant boundary.
func companyScope(ctx context.Context, companyID uuid.UUID, departmentID *uuid.UUID) *gorm.DB {
	query := database.DB.WithContext(ctx).Model(&models.StressCheck{}).
		Joins("JOIN users ON users.id = stress_checks.user_id").
		Where("users.company_id = ?", companyID)
	if departmentID != nil {
		query = query.Where("users.department_id = ?", *departmentID)
	}
	return query
}

func windowed(query *gorm.DB, start, end *time.Time) *gorm.DB {
	if start != nil {
		query = query.Where("stress_checks.created_at >= ?", *start)
	}
	if end != nil {
		// End date is inclusive: filter below the start of the next day.
		query = query.Where("stress_checks.created_at < ?", end.AddDate(0, 0, 1))
	}
	return query
}

// CountHighStress counts high-stress results for a company within an
// optional date window and department filter.
func CountHighStress(ctx context.Context, companyID uuid.UUID, departmentID *uuid.UUID, start, end *time.Time) (int64, error) {
	var count int64
	err := windowed(companyScope(ctx, companyID, departmentID), start, end).
		Where("stress_checks.is_high_stress = ?", true).
		Count(&count).Error
	return count, err
}

// CountDistinctRespondents counts subjects with at least one result in the
// window, for the completion-rate numerator.
func CountDistinctRespondents(ctx context.Context, companyID uuid.UUID, departmentID *uuid.UUID, start, end *time.Time) (int64, error) {
	var count int64
	err := windowed(companyScope(ctx, companyID, departmentID), start, end).
		Distinct("stress_checks.user_id").
		Count(&count).Error
	return count, err
}

// AverageTotalScore averages total_score over the window; 0 when no rows.
func AverageTotalScore(ctx context.Context, companyID uuid.UUID, departmentID *uuid.UUID, start, end *time.Time) (float64, error) {
	var avg *float64
	err := windowed(companyScope(ctx, companyID, departmentID), start, end).
		Select("AVG(stress_checks.total_score)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// LatestPeriod returns the most recent period with any results for the
// company, or nil when the company has no results at all.
func LatestPeriod(ctx context.Context, companyID uuid.UUID) (*time.Time, error) {
	var periods []time.Time
	err := companyScope(ctx, companyID, nil).
		Distinct("stress_checks.period").
		Order("stress_checks.period DESC").
		Limit(1).
		Pluck("stress_checks.period", &periods).Error
	if err != nil || len(periods) == 0 {
		return nil, err
	}
	return &periods[0], nil
}

// RecentPeriods returns up to limit distinct periods with results, newest
// first. Used by the trend alert to compare the two most recent periods.
func RecentPeriods(ctx context.Context, companyID uuid.UUID, limit int) ([]time.Time, error) {
	var periods []time.Time
	err := companyScope(ctx, companyID, nil).
		Distinct("stress_checks.period").
		Order("stress_checks.period DESC").
		Limit(limit).
		Pluck("stress_checks.period", &periods).Error
	return periods, err
}

func CountHighStressForPeriod(ctx context.Context, companyID uuid.UUID, period time.Time) (int64, error) {
	var count int64
	err := companyScope(ctx, companyID, nil).
		Where("stress_checks.period = ? AND stress_checks.is_high_stress = ?", period, true).
		Count(&count).Error
	return count, err
}

func CountDistinctRespondentsForPeriod(ctx context.Context, companyID uuid.UUID, period time.Time) (int64, error) {
	var count int64
	err := companyScope(ctx, companyID, nil).
		Where("stress_checks.period = ?", period).
		Distinct("stress_checks.user_id").
		Count(&count).Error
	return count, err
}

// AverageTotalScoreForPeriod averages total_score over one period; 0 when
// the period has no rows.
func AverageTotalScoreForPeriod(ctx context.Context, companyID uuid.UUID, period time.Time) (float64, error) {
	var avg *float64
	err := companyScope(ctx, companyID, nil).
		Where("stress_checks.period = ?", period).
		Select("AVG(stress_checks.total_score)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// departmentRow is the scan target for the grouped breakdown query.
type departmentRow struct {
	DepartmentID    uuid.UUID
	Name            string
	EmployeeCount   int
	AverageScore    *float64
	HighStressCount int
}

// DepartmentBreakdown computes per-department employee counts, average
// scores and high-stress counts in one grouped query. Departments without
// employees do not appear (the roster join is inner).
func DepartmentBreakdown(ctx context.Context, companyID uuid.UUID, start, end *time.Time) ([]models.DepartmentStat, error) {
	window := ""
	args := []interface{}{companyID}
	if start != nil {
		window += " AND stress_checks.created_at >= ?"
		args = append(args, *start)
	}
	if end != nil {
		window += " AND stress_checks.created_at < ?"
		args = append(args, end.AddDate(0, 0, 1))
	}

	var rows []departmentRow
	err := database.DB.WithContext(ctx).Raw(`
		SELECT departments.id AS department_id,
		       departments.name AS name,
		       COUNT(DISTINCT users.id) AS employee_count,
		       AVG(stress_checks.total_score) AS average_score,
		       COALESCE(SUM(CASE WHEN stress_checks.is_high_stress THEN 1 ELSE 0 END), 0) AS high_stress_count
		FROM departments
		JOIN users ON users.department_id = departments.id
		LEFT JOIN stress_checks ON stress_checks.user_id = users.id`+window+`
		WHERE departments.company_id = ?
		GROUP BY departments.id, departments.name
		ORDER BY departments.name`,
		append(args[1:], args[0])...).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make([]models.DepartmentStat, 0, len(rows))
	for _, row := range rows {
		stat := models.DepartmentStat{
			DepartmentID:    row.DepartmentID.String(),
			DepartmentName:  row.Name,
			EmployeeCount:   row.EmployeeCount,
			HighStressCount: row.HighStressCount,
		}
		if row.AverageScore != nil {
			stat.AverageScore = *row.AverageScore
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

// ListNonTaken returns company users without a result for the given period.
func ListNonTaken(ctx context.Context, companyID uuid.UUID, period time.Time) ([]models.User, error) {
	var users []models.User
	err := database.DB.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("id NOT IN (?)", database.DB.Model(&models.StressCheck{}).
			Select("user_id").
			Where("period = ?", period)).
		Find(&users).Error
	return users, err
}
