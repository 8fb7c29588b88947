package handlers

import (
	"errors"
	"net/http"

	"stresscheck-go/internal/models"
	"stresscheck-go/internal/repository"
	"stresscheck-go/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthHandler struct {
	log *zap.Logger
}

func NewAuthHandler(log *zap.Logger) *AuthHandler {
	return &AuthHandler{log: log}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CompanyName string `json:"company_name" binding:"required"`
	Industry    string `json:"industry"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a company and its first admin account, then returns a
// bearer token so onboarding needs no separate login round-trip.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, password and company_name are required"})
		return
	}

	email := utils.NormalizeEmail(req.Email)
	if !utils.IsValidEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
		return
	}
	if !utils.IsComplexPassword(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters with upper, lower, digit and symbol"})
		return
	}

	// Company and admin are created atomically: a duplicate email must not
	// leave an orphan tenant behind.
	company, user, err := repository.RegisterCompanyTx(c, req.CompanyName, req.Industry, email, req.Password)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "an account with this email already exists"})
			return
		}
		h.log.Error("Failed to register company", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	token, err := utils.SignToken(user)
	if err != nil {
		h.log.Error("Failed to sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	h.log.Info("Company registered",
		zap.String("companyID", company.ID.String()),
		zap.String("adminID", user.ID.String()),
	)
	c.JSON(http.StatusCreated, gin.H{
		"token":      token,
		"user_id":    user.ID,
		"company_id": company.ID,
		"role":       user.Role,
	})
}

type createEmployeeRequest struct {
	Email        string     `json:"email" binding:"required"`
	Password     string     `json:"password" binding:"required"`
	DepartmentID *uuid.UUID `json:"department_id"`
	Role         string     `json:"role"`
}

// CreateEmployee lets an admin add an account to their own company.
func (h *AuthHandler) CreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	email := utils.NormalizeEmail(req.Email)
	if !utils.IsValidEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
		return
	}
	if !utils.IsComplexPassword(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters with upper, lower, digit and symbol"})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleEmployee
	}
	if role != models.RoleEmployee && role != models.RoleDoctor && role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	user, err := repository.CreateUser(c, email, req.Password, currentCompanyID(c), req.DepartmentID, role)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "an account with this email already exists"})
			return
		}
		h.log.Error("Failed to create employee", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "employee creation failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id":       user.ID,
		"email":         user.Email,
		"role":          user.Role,
		"department_id": user.DepartmentID,
	})
}

// Me returns the authenticated user's own profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := repository.GetUserByID(c, currentUserID(c))
	if err != nil {
		h.log.Error("Failed to load current user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":       user.ID,
		"email":         user.Email,
		"role":          user.Role,
		"company_id":    user.CompanyID,
		"department_id": user.DepartmentID,
	})
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := repository.GetUserByEmail(c, utils.NormalizeEmail(req.Email))
	if err != nil || !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := utils.SignToken(user)
	if err != nil {
		h.log.Error("Failed to sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"user_id":    user.ID,
		"company_id": user.CompanyID,
		"role":       user.Role,
	})
}
