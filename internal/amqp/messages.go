package amqp

import (
	"encoding/json"
	"time"

	"headcount/internal/core"
)

// AllocationSavedMessage announces a created or updated headcount record.
type AllocationSavedMessage struct {
	ID         int64     `json:"id"`
	Department string    `json:"department"`
	CairoCount int       `json:"cairo_count"`
	TenthCount int       `json:"tenth_count"`
	Date       string    `json:"date"`
	Created    bool      `json:"created"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewAllocationSavedMessage(rec core.AllocationRecord, created bool) *AllocationSavedMessage {
	return &AllocationSavedMessage{
		ID:         rec.ID,
		Department: rec.Department,
		CairoCount: rec.CairoCount,
		TenthCount: rec.TenthCount,
		Date:       rec.Date.ISO(),
		Created:    created,
		Timestamp:  time.Now(),
	}
}

func (m *AllocationSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AllocationSavedMessageFromJSON(data []byte) (*AllocationSavedMessage, error) {
	var msg AllocationSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Record converts the message back into a domain record.
func (m *AllocationSavedMessage) Record() (core.AllocationRecord, error) {
	date, err := core.ParseISODate(m.Date)
	if err != nil {
		return core.AllocationRecord{}, err
	}
	return core.AllocationRecord{
		ID:         m.ID,
		Department: m.Department,
		CairoCount: m.CairoCount,
		TenthCount: m.TenthCount,
		Date:       date,
	}, nil
}
