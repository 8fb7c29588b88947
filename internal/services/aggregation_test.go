package services

import (
	"math"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestStatsService() *StatsService {
	svc := NewStatsService(zap.NewNop())
	svc.now = fixedClock(2026, time.August, 15)
	return svc
}

func TestResolveWindow(t *testing.T) {
	svc := newTestStatsService()

	start, end := svc.ResolveWindow(PeriodThisMonth)
	if start == nil || !start.Equal(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("thisMonth start = %v, want 2026-08-01", start)
	}
	if end == nil || end.Day() != 15 {
		t.Errorf("thisMonth end = %v, want today", end)
	}

	start, end = svc.ResolveWindow(PeriodLastMonth)
	if start == nil || !start.Equal(time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("lastMonth start = %v, want 2026-07-01", start)
	}
	if end == nil || !end.Equal(time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("lastMonth end = %v, want 2026-07-31", end)
	}

	start, _ = svc.ResolveWindow(PeriodThreeMonths)
	if start == nil || svc.now().Sub(*start) != 90*24*time.Hour {
		t.Errorf("3months start = %v, want 90 days back", start)
	}

	if start, end = svc.ResolveWindow(PeriodAll); start != nil || end != nil {
		t.Error("all must resolve to an unbounded window")
	}
	if start, end = svc.ResolveWindow(PeriodFilter("bogus")); start != nil || end != nil {
		t.Error("unknown filters must resolve to an unbounded window")
	}
}

func TestCompanyStatsEmptyCompany(t *testing.T) {
	setupTestDB(t)
	company := createCompany(t, "Empty Inc")

	svc := newTestStatsService()
	stats, err := svc.CompanyStats(testCtx, company.ID, nil, nil, nil)
	if err != nil {
		t.Fatalf("CompanyStats: %v", err)
	}
	if stats.Stats.TotalEmployees != 0 || stats.Stats.HighStressCount != 0 {
		t.Errorf("empty company counts = %+v, want zeros", stats.Stats)
	}
	if stats.Stats.CompletionRate != 0 || stats.Stats.AverageStressScore != 0 {
		t.Errorf("empty company rates = %+v, want zeros", stats.Stats)
	}
	if len(stats.DepartmentStats) != 0 {
		t.Errorf("empty company has %d department rows, want 0", len(stats.DepartmentStats))
	}
}

func TestCompanyStatsAggregation(t *testing.T) {
	setupTestDB(t)
	company := createCompany(t, "Acme")
	sales := createDepartment(t, company.ID, "Sales")
	engineering := createDepartment(t, company.ID, "Engineering")
	createDepartment(t, company.ID, "Vacant")

	period := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	a := createEmployee(t, company.ID, &sales.ID, "a@acme.test")
	b := createEmployee(t, company.ID, &sales.ID, "b@acme.test")
	c := createEmployee(t, company.ID, &engineering.ID, "c@acme.test")
	createEmployee(t, company.ID, &engineering.ID, "d@acme.test")

	createCheck(t, a.ID, period, 180, true)
	createCheck(t, b.ID, period, 100, false)
	createCheck(t, c.ID, period, 80, false)

	svc := newTestStatsService()
	stats, err := svc.CompanyStats(testCtx, company.ID, nil, nil, nil)
	if err != nil {
		t.Fatalf("CompanyStats: %v", err)
	}

	if stats.Stats.TotalEmployees != 4 {
		t.Errorf("total employees = %d, want 4", stats.Stats.TotalEmployees)
	}
	if stats.Stats.HighStressCount != 1 {
		t.Errorf("high stress count = %d, want 1", stats.Stats.HighStressCount)
	}
	if stats.Stats.CompletionRate != 75 {
		t.Errorf("completion rate = %v, want 75", stats.Stats.CompletionRate)
	}
	if math.Abs(stats.Stats.AverageStressScore-120) > 1e-9 {
		t.Errorf("average score = %v, want 120", stats.Stats.AverageStressScore)
	}

	// Breakdown is alphabetical and skips employee-less departments.
	if len(stats.DepartmentStats) != 2 {
		t.Fatalf("department rows = %d, want 2", len(stats.DepartmentStats))
	}
	eng := stats.DepartmentStats[0]
	if eng.DepartmentName != "Engineering" || eng.EmployeeCount != 2 || eng.HighStressCount != 0 {
		t.Errorf("engineering row = %+v", eng)
	}
	if math.Abs(eng.AverageScore-80) > 1e-9 {
		t.Errorf("engineering average = %v, want 80", eng.AverageScore)
	}
	salesRow := stats.DepartmentStats[1]
	if salesRow.DepartmentName != "Sales" || salesRow.EmployeeCount != 2 || salesRow.HighStressCount != 1 {
		t.Errorf("sales row = %+v", salesRow)
	}
	if math.Abs(salesRow.AverageScore-140) > 1e-9 {
		t.Errorf("sales average = %v, want 140", salesRow.AverageScore)
	}
}

func TestCompanyStatsDepartmentFilterAndWindow(t *testing.T) {
	setupTestDB(t)
	company := createCompany(t, "Acme")
	sales := createDepartment(t, company.ID, "Sales")
	engineering := createDepartment(t, company.ID, "Engineering")

	period := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	a := createEmployee(t, company.ID, &sales.ID, "a@acme.test")
	b := createEmployee(t, company.ID, &engineering.ID, "b@acme.test")
	createCheck(t, a.ID, period, 150, true)
	createCheck(t, b.ID, period, 90, false)

	svc := newTestStatsService()
	stats, err := svc.CompanyStats(testCtx, company.ID, &sales.ID, nil, nil)
	if err != nil {
		t.Fatalf("CompanyStats: %v", err)
	}
	if stats.Stats.TotalEmployees != 1 || stats.Stats.HighStressCount != 1 {
		t.Errorf("sales-only stats = %+v", stats.Stats)
	}
	if math.Abs(stats.Stats.AverageStressScore-150) > 1e-9 {
		t.Errorf("sales-only average = %v, want 150", stats.Stats.AverageStressScore)
	}

	// A window that predates every submission excludes them all.
	pastStart := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	pastEnd := time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC)
	stats, err = svc.CompanyStats(testCtx, company.ID, nil, &pastStart, &pastEnd)
	if err != nil {
		t.Fatalf("CompanyStats windowed: %v", err)
	}
	if stats.Stats.HighStressCount != 0 || stats.Stats.CompletionRate != 0 {
		t.Errorf("out-of-window stats = %+v, want zeros", stats.Stats)
	}
	if stats.Stats.TotalEmployees != 2 {
		t.Errorf("roster size is not windowed, got %d", stats.Stats.TotalEmployees)
	}
}
