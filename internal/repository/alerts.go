package repository

import (
	"context"
	"time"

	"stresscheck-go/internal/database"
	"stresscheck-go/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// GetAlertStates loads the persisted read/notified bookkeeping for a set of
// deterministic alert ids.
func GetAlertStates(ctx context.Context, ids []string) (map[string]models.AlertState, error) {
	states := make(map[string]models.AlertState, len(ids))
	if len(ids) == 0 {
		return states, nil
	}
	var rows []models.AlertState
	err := database.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		states[row.ID] = row
	}
	return states, nil
}

// MarkAlertRead records read_at for an alert id. Idempotent: repeated calls
// refresh the timestamp on the same row.
func MarkAlertRead(ctx context.Context, alertID string, companyID uuid.UUID) error {
	now := time.Now().UTC()
	state := &models.AlertState{ID: alertID, CompanyID: companyID, ReadAt: &now}
	return database.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"read_at", "updated_at"}),
	}).Create(state).Error
}

// MarkAlertUnread clears read_at. A no-op for ids never seen before beyond
// creating the bookkeeping row.
func MarkAlertUnread(ctx context.Context, alertID string, companyID uuid.UUID) error {
	state := &models.AlertState{ID: alertID, CompanyID: companyID, ReadAt: nil}
	return database.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"read_at", "updated_at"}),
	}).Create(state).Error
}

// MarkAlertNotified records that the alert has been handed to the
// notification collaborator; later evaluations must not dispatch it again.
func MarkAlertNotified(ctx context.Context, alertID string, companyID uuid.UUID) error {
	now := time.Now().UTC()
	state := &models.AlertState{ID: alertID, CompanyID: companyID, NotifiedAt: &now}
	return database.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"notified_at", "updated_at"}),
	}).Create(state).Error
}
