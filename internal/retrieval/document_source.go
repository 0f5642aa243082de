package retrieval

import (
	"context"
	"fmt"

	"github.com/qainatsaeed/BlackBox-LLM/internal/pkg/logger"
	"github.com/qainatsaeed/BlackBox-LLM/internal/policy"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/contract"
	"github.com/qainatsaeed/BlackBox-LLM/pkg/embedding"
)

// DocumentSource answers queries from the vector index. topK <= 0 means the
// source's configured default.
type DocumentSource interface {
	Retrieve(ctx context.Context, query string, scope policy.Scope, topK int) ([]Fragment, error)
}

type vectorSource struct {
	embedder   embedding.Provider
	embeddings contract.DocumentEmbeddingRepository
	topK       int
	threshold  float64
	log        logger.ILogger
}

func NewVectorSource(
	embedder embedding.Provider,
	embeddings contract.DocumentEmbeddingRepository,
	topK int,
	threshold float64,
	log logger.ILogger,
) DocumentSource {
	if topK <= 0 {
		topK = 5
	}
	return &vectorSource{
		embedder:   embedder,
		embeddings: embeddings,
		topK:       topK,
		threshold:  threshold,
		log:        log,
	}
}

func (s *vectorSource) Retrieve(ctx context.Context, query string, scope policy.Scope, topK int) ([]Fragment, error) {
	if topK <= 0 {
		topK = s.topK
	}

	vector, err := s.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored, err := s.embeddings.SearchSimilarWithScore(ctx, vector, topK, scope, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	fragments := make([]Fragment, 0, len(scored))
	for _, doc := range scored {
		fragments = append(fragments, Fragment{
			Text:         doc.Embedding.Document,
			Score:        doc.Similarity,
			Source:       SourceDocuments,
			SourceID:     doc.Embedding.SourceID,
			AccountID:    doc.Embedding.AccountID,
			LocationID:   doc.Embedding.LocationID,
			EmployeeCode: doc.Embedding.EmployeeCode,
			DataType:     doc.Embedding.DataType,
		})
	}
	return fragments, nil
}
