package lead

import (
	"context"
	"regexp"

	"github.com/rs/zerolog"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+\d{1,3}[-.]?)?\(?\d{3}\)?[-.]?\d{3}[-.]?\d{4}`)
)

// Extractor scans message text for contact patterns and records candidate
// leads. It runs off the reply path; its failures never delay a reply.
type Extractor struct {
	repo Repository
	log  zerolog.Logger
}

// NewExtractor builds the extractor.
func NewExtractor(repo Repository, log zerolog.Logger) *Extractor {
	return &Extractor{
		repo: repo,
		log:  log.With().Str("component", "lead-extractor").Logger(),
	}
}

// Extract inserts one lead using the first email and first phone match.
// Text without either pattern creates nothing. No dedup against existing
// leads for the same user.
func (e *Extractor) Extract(ctx context.Context, userID, text string) error {
	email := emailPattern.FindString(text)
	phone := phonePattern.FindString(text)

	if email == "" && phone == "" {
		return nil
	}

	l := &Lead{
		UserID:        userID,
		Status:        StatusNew,
		SourceMessage: text,
	}
	if email != "" {
		l.Email = &email
	}
	if phone != "" {
		l.Phone = &phone
	}

	e.log.Info().Str("user_id", userID).Bool("email", email != "").Bool("phone", phone != "").Msg("lead detected")
	return e.repo.Create(ctx, l)
}
