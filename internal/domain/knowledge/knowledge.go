package knowledge

import (
	"context"
	"time"
)

// Item is one uploaded document.
type Item struct {
	ID          string
	Filename    string
	ContentType string
	CreatedAt   time.Time
}

// Chunk is a slice of an item's text plus its similarity to the query when
// returned from a search.
type Chunk struct {
	ID         uint
	ItemID     string
	Content    string
	Similarity float64
}

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index stores chunk vectors and answers nearest-neighbor queries.
type Index interface {
	CreateItem(ctx context.Context, item *Item) error
	ListItems(ctx context.Context) ([]Item, error)
	DeleteItem(ctx context.Context, id string) error
	InsertChunk(ctx context.Context, itemID, content string, embedding []float32) error
	// Search returns chunks with similarity >= threshold, at most topK,
	// ordered by descending similarity. An empty result is not an error.
	Search(ctx context.Context, vector []float32, threshold float64, topK int) ([]Chunk, error)
}
