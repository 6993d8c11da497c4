package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"instareply/internal/infrastructure/database/entities"
)

// AutoMigrate applies schema changes for the auto-responder tables and
// prepares the pgvector extension and index.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	// The vector column type requires the extension before migration.
	if err := db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		log.Warn().Err(err).Msg("pgvector extension unavailable, similarity search disabled")
	}

	if err := db.WithContext(ctx).AutoMigrate(
		&entities.ConversationState{},
		&entities.ConversationMessage{},
		&entities.ProcessedMessage{},
		&entities.BotSetting{},
		&entities.KnowledgeItem{},
		&entities.KnowledgeVector{},
		&entities.Lead{},
	); err != nil {
		return err
	}

	// Cosine index for knowledge search. HNSW caps vector columns at 2000
	// dimensions, so the 3072-dim embeddings are indexed through a halfvec
	// expression and queries must cast both sides to match. Failure is
	// non-fatal: queries fall back to a sequential scan.
	if err := db.WithContext(ctx).Exec(
		"CREATE INDEX IF NOT EXISTS knowledge_base_vectors_embedding_idx ON knowledge_base_vectors USING hnsw ((embedding::halfvec(3072)) halfvec_cosine_ops)",
	).Error; err != nil {
		log.Warn().Err(err).Msg("vector index creation failed")
	}

	log.Info().Msg("database schema up to date")
	return nil
}
