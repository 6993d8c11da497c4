package settings

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"instareply/internal/utils/apperrors"
)

// DefaultSystemPrompt is used until an operator saves a persona.
const DefaultSystemPrompt = "You are a helpful assistant talking to a customer on Instagram. Keep it friendly and concise."

// Settings holds the operator-editable persona.
type Settings struct {
	SystemPrompt string
	UpdatedAt    time.Time
}

// Repository persists the single settings row.
type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Upsert(ctx context.Context, systemPrompt string) error
}

// Service reads and writes bot settings.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

// NewService builds the settings service.
func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "settings").Logger(),
	}
}

// Get returns the stored settings, or the default persona when none exist.
func (s *Service) Get(ctx context.Context) (*Settings, error) {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrTypeNotFound) {
			return &Settings{SystemPrompt: DefaultSystemPrompt}, nil
		}
		return nil, err
	}
	if stored.SystemPrompt == "" {
		stored.SystemPrompt = DefaultSystemPrompt
	}
	return stored, nil
}

// SystemPrompt returns the persona text, falling back to the default on any
// read failure so a settings outage never blocks replies.
func (s *Service) SystemPrompt(ctx context.Context) string {
	stored, err := s.Get(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("settings read failed, using default persona")
		return DefaultSystemPrompt
	}
	return stored.SystemPrompt
}

// Update saves the persona text.
func (s *Service) Update(ctx context.Context, systemPrompt string) error {
	if systemPrompt == "" {
		return apperrors.New(apperrors.ErrTypeValidation, "system prompt is required")
	}
	return s.repo.Upsert(ctx, systemPrompt)
}
