package models

import (
	"encoding/json"
	"time"
)

const (
	OutboxPending    = "pending"
	OutboxDispatched = "dispatched"
	OutboxFailed     = "failed"
)

// OutboxMessage is an event recorded in the same transaction as the
// state change it describes, waiting to be forwarded to the broker.
type OutboxMessage struct {
	ID            string          `json:"id"`
	UUID          string          `json:"uuid"`
	Name          string          `json:"name"`
	Payload       json.RawMessage `json:"payload"`
	Status        string          `json:"status"`
	Attempts      int             `json:"attempts"`
	LastError     string          `json:"last_error,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Created       time.Time       `json:"created"`
	DispatchedAt  *time.Time      `json:"dispatched_at,omitempty"`
}
