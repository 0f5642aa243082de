package dto

import (
	"github.com/go-playground/validator/v10"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// AskRequest is the inbound query envelope. Immutable once dequeued; the
// request_id is the correlation key carried through to the response.
type AskRequest struct {
	RequestID             string   `json:"request_id" validate:"required"`
	Query                 string   `json:"query" validate:"required"`
	UserID                string   `json:"user_id" validate:"required"`
	Role                  string   `json:"role" validate:"required"`
	AccountID             string   `json:"account_id"`
	AccessibleLocationIDs []string `json:"accessible_location_ids"`
	TeamEmployeeIDs       []string `json:"team_employee_ids"`
	Model                 string   `json:"model,omitempty"`
	TopK                  int      `json:"top_k,omitempty"`
}

// ErrorDetail carries a stable machine-readable code plus a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseMeta is diagnostic metadata attached to responses for roles above
// employee. Partial retrieval failures surface here, not as errors.
type ResponseMeta struct {
	Classification       string `json:"classification,omitempty"`
	DocumentsRetrieved   int    `json:"documents_retrieved"`
	DocumentsAfterFilter int    `json:"documents_after_filtering"`
	PartialFailure       string `json:"partial_failure,omitempty"`
}

// AskResponse is the outbound response envelope. Exactly one is produced per
// processed request, carrying the originating request_id on every path.
type AskResponse struct {
	RequestID string        `json:"request_id"`
	Status    string        `json:"status"`
	Answer    string        `json:"answer,omitempty"`
	Error     *ErrorDetail  `json:"error,omitempty"`
	ModelUsed string        `json:"model_used,omitempty"`
	ElapsedMs int64         `json:"elapsed_ms"`
	Debug     *ResponseMeta `json:"debug,omitempty"`
}

var validate = validator.New()

// Validate checks the envelope schema. Requester identity is checked here;
// role semantics are the policy layer's concern.
func (r *AskRequest) Validate() error {
	return validate.Struct(r)
}

type IngestCSVRequest struct {
	FilePath string `json:"file_path" validate:"required"`
	DataType string `json:"data_type" validate:"required,oneof=shift sale document"`
}

func (r *IngestCSVRequest) Validate() error {
	return validate.Struct(r)
}

type IngestSQLRequest struct {
	Query string `json:"query" validate:"required"`
}

func (r *IngestSQLRequest) Validate() error {
	return validate.Struct(r)
}

type IngestResponse struct {
	Success           bool `json:"success"`
	RecordsIngested   int  `json:"records_ingested"`
	DocumentsIndexed  int  `json:"documents_indexed"`
	EmbeddingFailures int  `json:"embedding_failures,omitempty"`
}
