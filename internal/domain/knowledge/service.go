package knowledge

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"instareply/internal/utils/apperrors"
)

// UploadResult reports how many chunks of an upload made it into the index.
type UploadResult struct {
	ItemID          string `json:"item_id"`
	ChunksProcessed int    `json:"chunksProcessed"`
	TotalChunks     int    `json:"totalChunks"`
}

// Service ingests documents: chunk, embed, store.
type Service struct {
	embedder     Embedder
	index        Index
	chunkSize    int
	chunkOverlap int
	log          zerolog.Logger
}

// NewService builds the knowledge ingestion service.
func NewService(embedder Embedder, index Index, chunkSize, chunkOverlap int, log zerolog.Logger) *Service {
	return &Service{
		embedder:     embedder,
		index:        index,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		log:          log.With().Str("component", "knowledge").Logger(),
	}
}

// ListItems returns uploaded documents, newest first.
func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	return s.index.ListItems(ctx)
}

// DeleteItem removes a document; its chunks cascade.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	return s.index.DeleteItem(ctx, id)
}

// Upload stores the document metadata, chunks the text, and embeds each
// chunk best-effort. Failing chunks are logged and skipped; the upload only
// fails when nothing at all could be embedded.
func (s *Service) Upload(ctx context.Context, filename, contentType, text string) (*UploadResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.New(apperrors.ErrTypeValidation, "empty file content")
	}

	item := &Item{
		ID:          uuid.NewString(),
		Filename:    filename,
		ContentType: contentType,
	}
	if err := s.index.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	chunks := ChunkText(text, s.chunkSize, s.chunkOverlap)
	s.log.Info().Str("item_id", item.ID).Int("chunks", len(chunks)).Msg("embedding upload")

	processed := 0
	for _, chunk := range chunks {
		embedding, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			s.log.Error().Err(err).Str("item_id", item.ID).Msg("chunk embedding failed")
			continue
		}
		if err := s.index.InsertChunk(ctx, item.ID, chunk, embedding); err != nil {
			s.log.Error().Err(err).Str("item_id", item.ID).Msg("chunk insert failed")
			continue
		}
		processed++
	}

	if processed == 0 {
		return nil, apperrors.New(apperrors.ErrTypeEmbedding, "failed to embed any chunk")
	}

	return &UploadResult{
		ItemID:          item.ID,
		ChunksProcessed: processed,
		TotalChunks:     len(chunks),
	}, nil
}
