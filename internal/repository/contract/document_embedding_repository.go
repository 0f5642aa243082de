package contract

import (
	"context"

	"github.com/qainatsaeed/BlackBox-LLM/internal/entity"
	"github.com/qainatsaeed/BlackBox-LLM/internal/policy"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/specification"
)

// ScoredDocument pairs an embedding row with its cosine similarity to the
// query vector.
type ScoredDocument struct {
	Embedding  *entity.DocumentEmbedding
	Similarity float64
}

type DocumentEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.DocumentEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.DocumentEmbedding) error
	DeleteBySourceId(ctx context.Context, sourceID string) error
	// SearchSimilarWithScore runs a scope-bounded vector search, returning
	// at most limit chunks with similarity >= threshold, best first.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, scope policy.Scope, threshold float64) ([]*ScoredDocument, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
