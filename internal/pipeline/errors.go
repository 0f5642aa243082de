package pipeline

// Stable error codes carried in the response envelope. Consumers match on
// these, the messages are free to change.
const (
	CodeBadRequest            = "BAD_REQUEST"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeRetrievalPartial      = "RETRIEVAL_PARTIAL_FAILURE"
	CodeRetrievalTotalFailure = "RETRIEVAL_TOTAL_FAILURE"
	CodeUnknownModel          = "UNKNOWN_MODEL"
	CodeModelUnavailable      = "MODEL_UNAVAILABLE"
	CodeTimeout               = "TIMEOUT"
)
