package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentEmbedding is one indexed chunk of a free-text document, tagged with
// the visibility coordinates the scope predicate filters on.
type DocumentEmbedding struct {
	Id             uuid.UUID
	Document       string
	EmbeddingValue []float32
	SourceID       string
	AccountID      string
	LocationID     string
	EmployeeCode   string
	DataType       string // "shift", "sales_breakdown", "public", ...
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
