package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"

	"instareply/internal/infrastructure/database/entities"
	"instareply/internal/utils/apperrors"
)

// ActiveUser is a conversation participant with cached profile fields.
type ActiveUser struct {
	UserID     string  `json:"user_id"`
	Username   *string `json:"username"`
	UserName   *string `json:"user_name"`
	ProfilePic *string `json:"profile_pic"`
}

// DailyCount is one point of the activity time series.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Summary is the dashboard analytics payload.
type Summary struct {
	TotalMessages      int64        `json:"totalMessages"`
	TotalUsers         int64        `json:"totalUsers"`
	ActiveUsers        []ActiveUser `json:"activeUsers"`
	MessagesLast24h    int64        `json:"messagesLast24h"`
	ActivityTimeSeries []DailyCount `json:"activityTimeSeries"`
}

// Repository aggregates conversation activity for the dashboard.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an analytics repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Summarize computes message totals, the active user list, and a seven-day
// daily activity series.
func (r *Repository) Summarize(ctx context.Context, now time.Time) (*Summary, error) {
	var totalMessages int64
	if err := r.db.WithContext(ctx).
		Model(&entities.ConversationMessage{}).
		Count(&totalMessages).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to count messages", err)
	}

	var states []entities.ConversationState
	if err := r.db.WithContext(ctx).
		Order("last_message_at DESC").
		Find(&states).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to list users", err)
	}
	activeUsers := make([]ActiveUser, len(states))
	for i, s := range states {
		activeUsers[i] = ActiveUser{
			UserID:     s.UserID,
			Username:   s.Username,
			UserName:   s.UserName,
			ProfilePic: s.ProfilePic,
		}
	}

	var last24h int64
	if err := r.db.WithContext(ctx).
		Model(&entities.ConversationMessage{}).
		Where("created_at >= ?", now.Add(-24*time.Hour)).
		Count(&last24h).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to count recent messages", err)
	}

	var timestamps []time.Time
	if err := r.db.WithContext(ctx).
		Model(&entities.ConversationMessage{}).
		Where("created_at >= ?", now.Add(-7*24*time.Hour)).
		Order("created_at ASC").
		Pluck("created_at", &timestamps).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to fetch activity series", err)
	}

	return &Summary{
		TotalMessages:      totalMessages,
		TotalUsers:         int64(len(states)),
		ActiveUsers:        activeUsers,
		MessagesLast24h:    last24h,
		ActivityTimeSeries: BucketDaily(timestamps, now),
	}, nil
}

// BucketDaily aggregates timestamps into per-day counts covering the last
// seven days, zero-filled and sorted ascending by date.
func BucketDaily(timestamps []time.Time, now time.Time) []DailyCount {
	counts := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		day := now.AddDate(0, 0, -i).UTC().Format("2006-01-02")
		counts[day] = 0
	}
	for _, ts := range timestamps {
		day := ts.UTC().Format("2006-01-02")
		if _, ok := counts[day]; ok {
			counts[day]++
		}
	}

	series := make([]DailyCount, 0, len(counts))
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).UTC().Format("2006-01-02")
		series = append(series, DailyCount{Date: day, Count: counts[day]})
	}
	return series
}
