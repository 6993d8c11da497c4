package knowledge

import (
	"context"
	"errors"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	domain "instareply/internal/domain/knowledge"
	"instareply/internal/infrastructure/database/entities"
	"instareply/internal/utils/apperrors"
)

// Repository persists knowledge items and chunk vectors, and answers
// similarity queries through pgvector.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a knowledge repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateItem inserts the document metadata row.
func (r *Repository) CreateItem(ctx context.Context, item *domain.Item) error {
	entity := entities.KnowledgeItem{
		ID:          item.ID,
		Filename:    item.Filename,
		ContentType: item.ContentType,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to create knowledge item", err)
	}
	item.CreatedAt = entity.CreatedAt
	return nil
}

// ListItems returns uploaded documents, newest first.
func (r *Repository) ListItems(ctx context.Context) ([]domain.Item, error) {
	var rows []entities.KnowledgeItem
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to list knowledge items", err)
	}
	items := make([]domain.Item, len(rows))
	for i := range rows {
		items[i] = rows[i].EtoD()
	}
	return items, nil
}

// DeleteItem removes a document; chunk rows cascade on the foreign key.
func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&entities.KnowledgeItem{}, "id = ?", id)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to delete knowledge item", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Newf(apperrors.ErrTypeNotFound, "knowledge item not found: %s", id)
	}
	return nil
}

// InsertChunk stores one chunk with its embedding.
func (r *Repository) InsertChunk(ctx context.Context, itemID, content string, embedding []float32) error {
	entity := entities.KnowledgeVector{
		ItemID:    itemID,
		Content:   content,
		Embedding: pgvector.NewVector(embedding),
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrTypeDatabase, "failed to insert knowledge vector", err)
	}
	return nil
}

// Search runs a server-side cosine similarity query, filtered to the
// threshold and capped at topK, ordered by descending similarity. Both sides
// of the distance operator are cast to halfvec(3072) so the HNSW expression
// index built in AutoMigrate applies.
func (r *Repository) Search(ctx context.Context, vector []float32, threshold float64, topK int) ([]domain.Chunk, error) {
	query := pgvector.NewVector(vector)

	var rows []struct {
		ID         uint
		ItemID     string
		Content    string
		Similarity float64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, item_id, content, 1 - (embedding::halfvec(3072) <=> ?::halfvec(3072)) AS similarity
		FROM knowledge_base_vectors
		WHERE 1 - (embedding::halfvec(3072) <=> ?::halfvec(3072)) >= ?
		ORDER BY embedding::halfvec(3072) <=> ?::halfvec(3072)
		LIMIT ?`,
		query, query, threshold, query, topK,
	).Scan(&rows).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrTypeDatabase, "knowledge search failed", err)
	}

	chunks := make([]domain.Chunk, len(rows))
	for i, row := range rows {
		chunks[i] = domain.Chunk{
			ID:         row.ID,
			ItemID:     row.ItemID,
			Content:    row.Content,
			Similarity: row.Similarity,
		}
	}
	return chunks, nil
}
