package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"
)

const (
	ActionCreated EventAction = "created"
	ActionUpdated EventAction = "updated"
	ActionDeleted EventAction = "deleted"
)

type EventAction string

// TransactionEvent announces a committed mutation. It carries the record
// snapshot so consumers never read the producer's store.
type TransactionEvent struct {
	Action      EventAction      `json:"action"`
	Transaction core.Transaction `json:"transaction"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewTransactionEvent stamps an event with the current time.
func NewTransactionEvent(action EventAction, t core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Action:      action,
		Transaction: t,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes an event and rejects unknown actions or
// events without a transaction id.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return nil, fmt.Errorf("unknown event action %q", ev.Action)
	}
	if ev.Transaction.ID == "" {
		return nil, fmt.Errorf("event without transaction id")
	}
	return &ev, nil
}
