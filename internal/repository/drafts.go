package repository

import (
	"context"
	"errors"

	"stresscheck-go/internal/database"
	"stresscheck-go/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetDraft returns the user's draft, or nil when none exists.
func GetDraft(ctx context.Context, userID uuid.UUID) (*models.DraftAnswer, error) {
	var draft models.DraftAnswer
	err := database.DB.WithContext(ctx).First(&draft, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// UpsertDraft replaces the user's draft answers, creating the row on first
// save. At most one draft per user (unique user_id index).
func UpsertDraft(ctx context.Context, userID uuid.UUID, answers models.AnswerMap) (*models.DraftAnswer, error) {
	draft := &models.DraftAnswer{
		UserID:  userID,
		Answers: datatypes.NewJSONType(answers),
	}
	err := database.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"answers", "updated_at"}),
	}).Create(draft).Error
	if err != nil {
		return nil, err
	}
	return GetDraft(ctx, userID)
}

func DeleteDraft(ctx context.Context, userID uuid.UUID) error {
	return database.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.DraftAnswer{}).Error
}
