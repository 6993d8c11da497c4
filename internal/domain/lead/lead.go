package lead

import (
	"context"
	"time"
)

// Status values a lead moves through. Only operators change status.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusLost      = "lost"
)

// Lead is a candidate contact extracted from chat text. Multiple rows may
// exist per user; the dashboard reconciles.
type Lead struct {
	ID            uint
	UserID        string
	Email         *string
	Phone         *string
	Status        string
	SourceMessage string
	CreatedAt     time.Time

	// Profile fields joined from the conversation state for the dashboard.
	UserName   *string
	Username   *string
	ProfilePic *string
}

// Repository persists leads.
type Repository interface {
	Create(ctx context.Context, l *Lead) error
	List(ctx context.Context) ([]Lead, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
}
