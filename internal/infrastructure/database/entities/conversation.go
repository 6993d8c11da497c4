package entities

import (
	"time"

	"instareply/internal/domain/conversation"
)

// ConversationState is the per-user thread row.
type ConversationState struct {
	UserID        string    `gorm:"primaryKey;type:varchar(64)"`
	IsPaused      bool      `gorm:"not null;default:false"`
	LastMessageAt time.Time `gorm:"index"`
	UserName      *string   `gorm:"type:varchar(256)"`
	Username      *string   `gorm:"type:varchar(256)"`
	ProfilePic    *string   `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for ConversationState.
func (ConversationState) TableName() string {
	return "conversation_states"
}

// EtoD converts the entity to the domain model.
func (s *ConversationState) EtoD() conversation.State {
	return conversation.State{
		UserID:        s.UserID,
		IsPaused:      s.IsPaused,
		LastMessageAt: s.LastMessageAt,
		UserName:      s.UserName,
		Username:      s.Username,
		ProfilePic:    s.ProfilePic,
		CreatedAt:     s.CreatedAt,
	}
}

// ConversationMessage is one append-only history entry.
type ConversationMessage struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"type:varchar(64);index;not null"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for ConversationMessage.
func (ConversationMessage) TableName() string {
	return "conversation_history"
}

// EtoD converts the entity to the domain model.
func (m *ConversationMessage) EtoD() conversation.Message {
	return conversation.Message{
		ID:        m.ID,
		UserID:    m.UserID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// ProcessedMessage records a claimed provider message ID. The primary-key
// uniqueness constraint is the dedup mechanism: a violation on insert is the
// exclusive signal that the ID was already processed.
type ProcessedMessage struct {
	MessageID string    `gorm:"primaryKey;type:varchar(128)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for ProcessedMessage.
func (ProcessedMessage) TableName() string {
	return "processed_messages"
}
