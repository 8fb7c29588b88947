package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"stresscheck-go/internal/config"
	"stresscheck-go/internal/database"
	"stresscheck-go/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

// setupTestDB points the global connection at a fresh in-memory database.
// A single pooled connection serializes concurrent transactions, so the
// unique-index duplicate guard behaves deterministically under test.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Company{},
		&models.Department{},
		&models.User{},
		&models.StressCheck{},
		&models.DraftAnswer{},
		&models.AlertState{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	database.DB = db
	config.Conf = &config.Config{}
	t.Cleanup(func() { sqlDB.Close() })
}

func createCompany(t *testing.T, name string) *models.Company {
	t.Helper()
	company := &models.Company{Name: name, PlanType: "basic"}
	if err := database.DB.Create(company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	return company
}

func createDepartment(t *testing.T, companyID uuid.UUID, name string) *models.Department {
	t.Helper()
	department := &models.Department{CompanyID: companyID, Name: name}
	if err := database.DB.Create(department).Error; err != nil {
		t.Fatalf("create department: %v", err)
	}
	return department
}

func createEmployee(t *testing.T, companyID uuid.UUID, departmentID *uuid.UUID, email string) *models.User {
	t.Helper()
	user := &models.User{
		CompanyID:    companyID,
		DepartmentID: departmentID,
		Email:        email,
		Password:     "not-a-real-hash",
		Role:         models.RoleEmployee,
	}
	if err := database.DB.Create(user).Error; err != nil {
		t.Fatalf("create employee %s: %v", email, err)
	}
	return user
}

func createCheck(t *testing.T, userID uuid.UUID, period time.Time, totalScore int, highStress bool) {
	t.Helper()
	check := &models.StressCheck{
		UserID:       userID,
		Period:       period,
		TotalScore:   totalScore,
		IsHighStress: highStress,
	}
	if err := database.DB.Create(check).Error; err != nil {
		t.Fatalf("create stress check: %v", err)
	}
}

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	}
}

var testCtx = context.Background()
