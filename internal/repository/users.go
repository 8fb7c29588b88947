package repository

import (
	"context"

	"stresscheck-go/internal/database"
	"stresscheck-go/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterCompanyTx creates a company together with its first admin account
// in one transaction. A duplicate email rolls the company back too, so a
// failed registration leaves no orphan tenant behind.
func RegisterCompanyTx(ctx context.Context, companyName, industry, email, password string) (*models.Company, *models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	company := &models.Company{Name: companyName, Industry: industry, PlanType: "basic"}
	user := &models.User{
		Email:    email,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}
	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(company).Error; err != nil {
			return err
		}
		user.CompanyID = company.ID
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return company, user, nil
}

func CreateUser(ctx context.Context, email, password string, companyID uuid.UUID, departmentID *uuid.UUID, role string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		Password:     string(hashedPassword),
		CompanyID:    companyID,
		DepartmentID: departmentID,
		Role:         role,
	}
	result := database.DB.WithContext(ctx).Create(user)
	return user, result.Error
}

func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	result := database.DB.WithContext(ctx).First(&user, "email = ?", email)
	return &user, result.Error
}

func GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	result := database.DB.WithContext(ctx).First(&user, "id = ?", id)
	return &user, result.Error
}

// ListEmployees returns the roster in scope: all users of a company,
// optionally narrowed to one department.
func ListEmployees(ctx context.Context, companyID uuid.UUID, departmentID *uuid.UUID) ([]models.User, error) {
	query := database.DB.WithContext(ctx).Where("company_id = ?", companyID)
	if departmentID != nil {
		query = query.Where("department_id = ?", *departmentID)
	}
	var users []models.User
	err := query.Find(&users).Error
	return users, err
}

func ListDepartments(ctx context.Context, companyID uuid.UUID) ([]models.Department, error) {
	var departments []models.Department
	err := database.DB.WithContext(ctx).Where("company_id = ?", companyID).Find(&departments).Error
	return departments, err
}

// ListCompanyIDs is used by the scheduler to sweep alert evaluation across
// every tenant.
func ListCompanyIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := database.DB.WithContext(ctx).Model(&models.Company{}).Pluck("id", &ids).Error
	return ids, err
}
