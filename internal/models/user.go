package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User roles. Doctors exist in the data model for occupational-physician
// access but currently share the employee permission set.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleDoctor   = "doctor"
)

type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Industry  string
	PlanType  string `gorm:"not null;default:basic"`
	CreatedAt time.Time

	Users       []User       `gorm:"foreignKey:CompanyID"`
	Departments []Department `gorm:"foreignKey:CompanyID"`
}

type Department struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null"`
	Description string
	CreatedAt   time.Time
}

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	DepartmentID *uuid.UUID `gorm:"type:uuid;index"`
	Email        string     `gorm:"uniqueIndex;not null"`
	Password     string     `gorm:"not null"`
	Role         string     `gorm:"not null;default:employee"`
	CreatedAt    time.Time
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
