package knowledge

import (
	"context"
	"strings"
)

// Retriever embeds a query and looks up the closest stored chunks.
type Retriever struct {
	embedder  Embedder
	index     Index
	threshold float64
	topK      int
}

// NewRetriever builds a retriever with the given similarity threshold and
// result cap.
func NewRetriever(embedder Embedder, index Index, threshold float64, topK int) *Retriever {
	return &Retriever{
		embedder:  embedder,
		index:     index,
		threshold: threshold,
		topK:      topK,
	}
}

// Retrieve returns the matching chunks for the query. A failed embed aborts
// retrieval for this query only; the caller decides how to degrade.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Chunk, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.index.Search(ctx, vector, r.threshold, r.topK)
}

// JoinChunks renders chunks into the context block fed to the prompt.
func JoinChunks(chunks []Chunk) string {
	if len(chunks) == 0 {
		return ""
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, "\n\n---\n\n")
}
