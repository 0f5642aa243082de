package events

import "time"

// Event is the contract for everything published on the bus.
type Event interface {
	// EventType returns the unique code for this event (e.g. "QUERY_ANSWERED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation the constructors below build on.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewQueryAnswered marks one query envelope fully processed, success or not.
func NewQueryAnswered(requestID, status, modelUsed string, elapsedMs int64) Event {
	return BaseEvent{
		Type: "QUERY_ANSWERED",
		Data: map[string]interface{}{
			"request_id": requestID,
			"status":     status,
			"model_used": modelUsed,
			"elapsed_ms": elapsedMs,
		},
		OccurredAt: time.Now(),
	}
}

// NewDataIngested marks a completed ingestion batch.
func NewDataIngested(accountID, dataType string, records int) Event {
	return BaseEvent{
		Type: "DATA_INGESTED",
		Data: map[string]interface{}{
			"account_id": accountID,
			"data_type":  dataType,
			"records":    records,
		},
		OccurredAt: time.Now(),
	}
}
