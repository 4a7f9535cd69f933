package amqp

import (
	"encoding/json"
	"time"
)

// Entities carried by ChangeEvent
const (
	EntityTransactions = "transactions"
	EntitySettings     = "settings"
	EntityBackup       = "backup"
)

// ChangeEvent announces a committed mutation of the persisted state.
// IDs lists the affected transaction ids when the entity has them.
type ChangeEvent struct {
	Entity    string    `json:"entity"`
	Operation string    `json:"operation"`
	IDs       []string  `json:"ids,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeEvent creates a change event stamped with the current time
func NewChangeEvent(entity, operation string, ids ...string) ChangeEvent {
	return ChangeEvent{
		Entity:    entity,
		Operation: operation,
		IDs:       ids,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON creates an event from JSON bytes
func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var event ChangeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
