package entities

import (
	"time"

	"instareply/internal/domain/lead"
)

// Lead is a candidate contact record extracted from chat text.
type Lead struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        string    `gorm:"type:varchar(64);index;not null"`
	Email         *string   `gorm:"type:varchar(256)"`
	Phone         *string   `gorm:"type:varchar(64)"`
	Status        string    `gorm:"type:varchar(16);not null;default:'new'"`
	SourceMessage string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for Lead.
func (Lead) TableName() string {
	return "leads"
}

// EtoD converts the entity to the domain model.
func (l *Lead) EtoD() lead.Lead {
	return lead.Lead{
		ID:            l.ID,
		UserID:        l.UserID,
		Email:         l.Email,
		Phone:         l.Phone,
		Status:        l.Status,
		SourceMessage: l.SourceMessage,
		CreatedAt:     l.CreatedAt,
	}
}

// NewSchemaLead creates a database entity from the domain model.
func NewSchemaLead(l *lead.Lead) *Lead {
	return &Lead{
		ID:            l.ID,
		UserID:        l.UserID,
		Email:         l.Email,
		Phone:         l.Phone,
		Status:        l.Status,
		SourceMessage: l.SourceMessage,
	}
}
