package services

import (
	"context"
	"time"

	"stresscheck-go/internal/models"
	"stresscheck-go/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PeriodFilter names a relative date window resolved against "today".
type PeriodFilter string

const (
	PeriodThisMonth   PeriodFilter = "thisMonth"
	PeriodLastMonth   PeriodFilter = "lastMonth"
	PeriodThreeMonths PeriodFilter = "3months"
	PeriodSixMonths   PeriodFilter = "6months"
	PeriodOneYear     PeriodFilter = "1year"
	PeriodAll         PeriodFilter = "all"
)

// StatsService computes company and department statistics. Read-only over
// shared storage; safe for concurrent dashboard viewers.
type StatsService struct {
	log *zap.Logger
	now func() time.Time
}

func NewStatsService(log *zap.Logger) *StatsService {
	return &StatsService{
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// ResolveWindow turns a named filter into absolute start/end dates anchored
// at today. Nil bounds mean unbounded; lastMonth is the prior full calendar
// month, the month-count windows reach 90/180/365 days back.
func (s *StatsService) ResolveWindow(filter PeriodFilter) (start, end *time.Time) {
	today := s.now()

	switch filter {
	case PeriodThisMonth:
		first := PeriodOf(today)
		return &first, &today
	case PeriodLastMonth:
		firstOfThisMonth := PeriodOf(today)
		lastMonthEnd := firstOfThisMonth.AddDate(0, 0, -1)
		lastMonthStart := PeriodOf(lastMonthEnd)
		return &lastMonthStart, &lastMonthEnd
	case PeriodThreeMonths:
		from := today.AddDate(0, 0, -90)
		return &from, &today
	case PeriodSixMonths:
		from := today.AddDate(0, 0, -180)
		return &from, &today
	case PeriodOneYear:
		from := today.AddDate(0, 0, -365)
		return &from, &today
	default:
		// Unknown filters and "all" mean no window.
		return nil, nil
	}
}

// CompanyStats aggregates results for a company, optionally narrowed to a
// department and a date window. Empty scopes yield zeros, never errors or
// NaN; a failed query aborts the whole computation.
func (s *StatsService) CompanyStats(ctx context.Context, companyID uuid.UUID, departmentID *uuid.UUID, start, end *time.Time) (*models.DashboardStats, error) {
	employees, err := repository.ListEmployees(ctx, companyID, departmentID)
	if err != nil {
		return nil, NewDataAccessError(err)
	}

	if len(employees) == 0 {
		return &models.DashboardStats{DepartmentStats: []models.DepartmentStat{}}, nil
	}

	highStress, err := repository.CountHighStress(ctx, companyID, departmentID, start, end)
	if err != nil {
		return nil, NewDataAccessError(err)
	}

	respondents, err := repository.CountDistinctRespondents(ctx, companyID, departmentID, start, end)
	if err != nil {
		return nil, NewDataAccessError(err)
	}

	average, err := repository.AverageTotalScore(ctx, companyID, departmentID, start, end)
	if err != nil {
		return nil, NewDataAccessError(err)
	}

	departmentStats, err := repository.DepartmentBreakdown(ctx, companyID, start, end)
	if err != nil {
		return nil, NewDataAccessError(err)
	}

	totalEmployees := len(employees)
	return &models.DashboardStats{
		Stats: models.AggregateStats{
			TotalEmployees:     totalEmployees,
			HighStressCount:    int(highStress),
			CompletionRate:     float64(respondents) / float64(totalEmployees) * 100,
			AverageStressScore: average,
		},
		DepartmentStats: departmentStats,
	}, nil
}
