package diagnostics

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/contract"
)

// Service answers health and stats probes against the backing stores.
type Service struct {
	db         *gorm.DB
	redis      *redis.Client
	embeddings contract.DocumentEmbeddingRepository
	askQueue   string
}

func NewService(db *gorm.DB, rdb *redis.Client, embeddings contract.DocumentEmbeddingRepository, askQueue string) *Service {
	return &Service{
		db:         db,
		redis:      rdb,
		embeddings: embeddings,
		askQueue:   askQueue,
	}
}

// Health pings each backing store. The overall status is "ok" only when
// every store answers.
func (s *Service) Health(ctx context.Context) (map[string]string, bool) {
	result := map[string]string{
		"postgres": "ok",
		"redis":    "ok",
	}
	healthy := true

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		result["postgres"] = err.Error()
		healthy = false
	}

	if err := s.redis.Ping(ctx).Err(); err != nil {
		result["redis"] = err.Error()
		healthy = false
	}

	if healthy {
		result["status"] = "ok"
	} else {
		result["status"] = "degraded"
	}
	return result, healthy
}

// Stats reports indexed document chunks and the ask queue backlog. Probe
// failures report -1 for the affected counter rather than failing the call.
func (s *Service) Stats(ctx context.Context) map[string]int64 {
	documents, err := s.embeddings.Count(ctx)
	if err != nil {
		documents = -1
	}

	pending, err := s.redis.LLen(ctx, s.askQueue).Result()
	if err != nil {
		pending = -1
	}

	return map[string]int64{
		"indexed_documents": documents,
		"pending_requests":  pending,
	}
}
