package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnswerMap maps question ids ("q1".."q57") to raw responses in [1,4].
type AnswerMap map[string]int

// StressCheck is one completed assessment. Immutable once created; the
// composite unique index enforces at most one result per (user, period) at
// the storage layer, so concurrent submissions cannot both land.
type StressCheck struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stress_checks_user_period"`
	// Period is the first day of the assessment month.
	Period       time.Time                        `gorm:"not null;uniqueIndex:idx_stress_checks_user_period;index"`
	Answers      datatypes.JSONType[AnswerMap]    `gorm:"not null"`
	TotalScore   int                              `gorm:"not null"`
	IsHighStress bool                             `gorm:"not null;default:false"`
	CreatedAt    time.Time
}

// DraftAnswer holds a partially completed questionnaire, at most one per
// user. Superseded and deleted when the covering submission succeeds.
type DraftAnswer struct {
	ID        uuid.UUID                     `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID                     `gorm:"type:uuid;not null;uniqueIndex"`
	Answers   datatypes.JSONType[AnswerMap] `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AlertState persists per-alert read/notified bookkeeping keyed by the
// deterministic alert id. Replaces the in-process sets of earlier designs so
// state survives restarts and horizontal scaling.
type AlertState struct {
	ID         string    `gorm:"primaryKey"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ReadAt     *time.Time
	NotifiedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (s *StressCheck) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (d *DraftAnswer) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
