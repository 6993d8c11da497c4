package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "instareply/internal/domain/conversation"
	"instareply/internal/infrastructure/database/entities"
	"instareply/internal/utils/apperrors"
)

// Repository persists conversation state, history and processed message IDs.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// IsPaused reports the human-takeover flag. A missing row means not paused.
func (r *Repository) IsPaused(ctx context.Context, userID string) (bool, error) {
	var entity entities.ConversationState
	err := r.db.WithContext(ctx).
		Select("is_paused").
		Where("user_id = ?", userID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to read pause state", err)
	}
	return entity.IsPaused, nil
}

// SetPaused toggles the human-takeover flag, creating the row if absent.
func (r *Repository) SetPaused(ctx context.Context, userID string, paused bool) error {
	entity := entities.ConversationState{
		UserID:        userID,
		IsPaused:      paused,
		LastMessageAt: time.Now(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"is_paused": paused}),
	}).Create(&entity).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to set pause state", err)
	}
	return nil
}

// UpsertState merges the patch into the per-user row keyed by user ID.
func (r *Repository) UpsertState(ctx context.Context, userID string, patch domain.StatePatch) error {
	entity := entities.ConversationState{
		UserID:        userID,
		LastMessageAt: patch.LastMessageAt,
		UserName:      patch.UserName,
		Username:      patch.Username,
		ProfilePic:    patch.ProfilePic,
	}

	assignments := map[string]interface{}{
		"last_message_at": patch.LastMessageAt,
	}
	if patch.UserName != nil {
		assignments["user_name"] = *patch.UserName
	}
	if patch.Username != nil {
		assignments["username"] = *patch.Username
	}
	if patch.ProfilePic != nil {
		assignments["profile_pic"] = *patch.ProfilePic
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&entity).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to upsert conversation state", err)
	}
	return nil
}

// ListStates returns all conversation states, most recent activity first.
func (r *Repository) ListStates(ctx context.Context) ([]domain.State, error) {
	var rows []entities.ConversationState
	err := r.db.WithContext(ctx).
		Order("last_message_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to list conversation states", err)
	}
	states := make([]domain.State, len(rows))
	for i := range rows {
		states[i] = rows[i].EtoD()
	}
	return states, nil
}

// AppendMessage appends one history entry.
func (r *Repository) AppendMessage(ctx context.Context, userID, role, content string) error {
	if role == "" || content == "" {
		return apperrors.New(apperrors.ErrTypeValidation, "role and content are required")
	}
	entity := entities.ConversationMessage{
		UserID:  userID,
		Role:    role,
		Content: content,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to append message", err)
	}
	return nil
}

// RecentHistory fetches the newest entries and reverses them so the caller
// always sees oldest-first order.
func (r *Repository) RecentHistory(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	var rows []entities.ConversationMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to fetch recent history", err)
	}

	messages := make([]domain.Message, len(rows))
	for i := range rows {
		messages[len(rows)-1-i] = rows[i].EtoD()
	}
	return messages, nil
}

// History returns the full thread oldest-first.
func (r *Repository) History(ctx context.Context, userID string) ([]domain.Message, error) {
	var rows []entities.ConversationMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to fetch history", err)
	}
	messages := make([]domain.Message, len(rows))
	for i := range rows {
		messages[i] = rows[i].EtoD()
	}
	return messages, nil
}

// TryClaimMessageID attempts the dedup insert. A uniqueness violation means
// the ID was already processed and is not an error. Anything else is a store
// error: the caller must skip the event rather than risk a duplicate reply.
func (r *Repository) TryClaimMessageID(ctx context.Context, providerID string) (bool, error) {
	entity := entities.ProcessedMessage{MessageID: providerID}
	err := r.db.WithContext(ctx).Create(&entity).Error
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, apperrors.Wrap(apperrors.ErrTypeStore, "dedup claim failed", err)
	}
	return true, nil
}

// isUniqueViolation matches PostgreSQL error 23505.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
