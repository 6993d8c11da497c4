package conversation

import (
	"context"
	"time"
)

// Role values for history entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// State is the per-user conversation row. One row per external user ID,
// created on first inbound message and never deleted in normal operation.
type State struct {
	UserID        string
	IsPaused      bool
	LastMessageAt time.Time
	UserName      *string
	Username      *string
	ProfilePic    *string
	CreatedAt     time.Time
}

// Message is a single history entry. Append-only, ordered by creation time.
type Message struct {
	ID        uint
	UserID    string
	Role      string
	Content   string
	CreatedAt time.Time
}

// StatePatch carries the fields merged into State on upsert.
type StatePatch struct {
	LastMessageAt time.Time
	UserName      *string
	Username      *string
	ProfilePic    *string
}

// Store owns ConversationState and Message lifecycles. The orchestrator
// never writes those tables except through this interface.
type Store interface {
	// IsPaused treats a missing row as "not paused".
	IsPaused(ctx context.Context, userID string) (bool, error)
	// SetPaused toggles the human-takeover flag.
	SetPaused(ctx context.Context, userID string, paused bool) error
	// UpsertState merges the patch into the row, creating it if absent.
	UpsertState(ctx context.Context, userID string, patch StatePatch) error
	// ListStates returns all states ordered by last activity, newest first.
	ListStates(ctx context.Context) ([]State, error)

	// AppendMessage appends a history entry. Role and content must be
	// non-empty; no other validation.
	AppendMessage(ctx context.Context, userID, role, content string) error
	// RecentHistory returns at most limit entries ordered oldest-first.
	RecentHistory(ctx context.Context, userID string, limit int) ([]Message, error)
	// History returns the full thread oldest-first.
	History(ctx context.Context, userID string) ([]Message, error)

	// TryClaimMessageID inserts the provider message ID. It returns true on
	// a fresh claim and false when a uniqueness violation signals the ID was
	// already processed. Any other failure surfaces as a store error and the
	// caller must skip the event rather than risk a duplicate reply.
	TryClaimMessageID(ctx context.Context, providerID string) (bool, error)
}
