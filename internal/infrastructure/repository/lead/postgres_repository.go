package lead

import (
	"context"

	"gorm.io/gorm"

	domain "instareply/internal/domain/lead"
	"instareply/internal/infrastructure/database/entities"
	"instareply/internal/utils/apperrors"
)

// Repository persists leads.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a lead repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a lead row.
func (r *Repository) Create(ctx context.Context, l *domain.Lead) error {
	entity := entities.NewSchemaLead(l)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to create lead", err)
	}
	l.ID = entity.ID
	l.CreatedAt = entity.CreatedAt
	return nil
}

// List returns all leads newest first, with the sender's cached profile
// fields joined from the conversation state.
func (r *Repository) List(ctx context.Context) ([]domain.Lead, error) {
	var rows []struct {
		entities.Lead
		UserName   *string
		Username   *string
		ProfilePic *string
	}
	err := r.db.WithContext(ctx).
		Table("leads").
		Select("leads.*, conversation_states.user_name, conversation_states.username, conversation_states.profile_pic").
		Joins("LEFT JOIN conversation_states ON conversation_states.user_id = leads.user_id").
		Order("leads.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to list leads", err)
	}

	leads := make([]domain.Lead, len(rows))
	for i, row := range rows {
		l := row.Lead.EtoD()
		l.UserName = row.UserName
		l.Username = row.Username
		l.ProfilePic = row.ProfilePic
		leads[i] = l
	}
	return leads, nil
}

// UpdateStatus sets the operator-managed status of a lead.
func (r *Repository) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Lead{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to update lead status", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Newf(apperrors.ErrTypeNotFound, "lead not found: %d", id)
	}
	return nil
}

var _ domain.Repository = (*Repository)(nil)
