package entities

import (
	"time"

	"github.com/pgvector/pgvector-go"

	"instareply/internal/domain/knowledge"
)

// KnowledgeItem is one uploaded document.
type KnowledgeItem struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	Filename    string    `gorm:"type:varchar(512);not null"`
	ContentType string    `gorm:"type:varchar(128)"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`

	Vectors []KnowledgeVector `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for KnowledgeItem.
func (KnowledgeItem) TableName() string {
	return "knowledge_base_items"
}

// EtoD converts the entity to the domain model.
func (i *KnowledgeItem) EtoD() knowledge.Item {
	return knowledge.Item{
		ID:          i.ID,
		Filename:    i.Filename,
		ContentType: i.ContentType,
		CreatedAt:   i.CreatedAt,
	}
}

// KnowledgeVector is one chunk of an item with its embedding. Dimension
// matches the embedding model output (3072 in the deployed configuration).
type KnowledgeVector struct {
	ID        uint            `gorm:"primaryKey"`
	ItemID    string          `gorm:"type:varchar(36);index;not null"`
	Content   string          `gorm:"type:text;not null"`
	Embedding pgvector.Vector `gorm:"type:vector(3072)"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

// TableName specifies the table name for KnowledgeVector.
func (KnowledgeVector) TableName() string {
	return "knowledge_base_vectors"
}
