package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "instareply/internal/domain/settings"
	"instareply/internal/infrastructure/database/entities"
	"instareply/internal/utils/apperrors"
)

// Repository persists the single bot-settings row under a fixed identifier.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get reads the settings row.
func (r *Repository) Get(ctx context.Context) (*domain.Settings, error) {
	var entity entities.BotSetting
	err := r.db.WithContext(ctx).
		Where("id = ?", entities.BotSettingID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrTypeNotFound, "bot settings not configured")
		}
		return nil, apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to read bot settings", err)
	}
	return &domain.Settings{
		SystemPrompt: entity.SystemPrompt,
		UpdatedAt:    entity.UpdatedAt,
	}, nil
}

// Upsert writes the persona text against the fixed row ID.
func (r *Repository) Upsert(ctx context.Context, systemPrompt string) error {
	entity := entities.BotSetting{
		ID:           entities.BotSettingID,
		SystemPrompt: systemPrompt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"system_prompt", "updated_at"}),
	}).Create(&entity).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to save bot settings", err)
	}
	return nil
}

var _ domain.Repository = (*Repository)(nil)
