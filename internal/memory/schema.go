package memory

import (
	"encoding/json"
	"time"
)

// Type tags what kind of event a memory records.
type Type string

const (
	TypeInput       Type = "input"
	TypeResponse    Type = "response"
	TypeAction      Type = "action"
	TypeObservation Type = "observation"
)

// DefaultImportance is the weight given to memories added without one.
const DefaultImportance = 1

// Memory is a single entry in the agent's short-term log.
// Memories are immutable once created.
type Memory struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Type       Type      `json:"memory_type"`
	Importance int       `json:"importance"`
}

// MarshalJSON renders the timestamp as ISO-8601.
func (m Memory) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID         string `json:"id"`
		Content    string `json:"content"`
		Timestamp  string `json:"timestamp"`
		Type       Type   `json:"memory_type"`
		Importance int    `json:"importance"`
	}{
		ID:         m.ID,
		Content:    m.Content,
		Timestamp:  m.Timestamp.Format(time.RFC3339Nano),
		Type:       m.Type,
		Importance: m.Importance,
	})
}
