package models

import "time"

// Alert severities, most urgent first in sort order.
const (
	AlertHigh   = "high"
	AlertMedium = "medium"
	AlertLow    = "low"
)

// AggregateStats is the company-level dashboard summary. CompletionRate is a
// percentage (0-100); zero-employee scopes report 0 across the board.
type AggregateStats struct {
	TotalEmployees     int     `json:"total_employees"`
	HighStressCount    int     `json:"high_stress_count"`
	CompletionRate     float64 `json:"stress_check_completion_rate"`
	AverageStressScore float64 `json:"average_stress_score"`
}

// DepartmentStat is one row of the per-department breakdown. Departments with
// zero employees are omitted entirely.
type DepartmentStat struct {
	DepartmentID    string  `json:"department_id"`
	DepartmentName  string  `json:"department_name"`
	EmployeeCount   int     `json:"employee_count"`
	AverageScore    float64 `json:"average_score"`
	HighStressCount int     `json:"high_stress_count"`
}

// DashboardStats is the full dashboard payload.
type DashboardStats struct {
	Stats           AggregateStats   `json:"stats"`
	DepartmentStats []DepartmentStat `json:"department_stats"`
}

// Alert is one evaluated alert. The ID is deterministic over
// (category, company, period) so re-evaluation never duplicates entries.
type Alert struct {
	ID             string    `json:"id"`
	DepartmentName string    `json:"department_name"`
	Level          string    `json:"alert_level"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
	Read           bool      `json:"read"`
}
