package events

import (
	"encoding/json"
	"time"

	"spendtrack/internal/core"
)

// ExpenseSyncedMessage notifies downstream consumers that an expense row has
// been confirmed in the spreadsheet.
type ExpenseSyncedMessage struct {
	ID        int64     `json:"id"`
	Amount    float64   `json:"amount"`
	Type      string    `json:"type"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseSyncedMessage(e core.Expense) *ExpenseSyncedMessage {
	return &ExpenseSyncedMessage{
		ID:        e.ID,
		Amount:    e.Amount,
		Type:      e.Type,
		Month:     e.Month,
		Year:      e.Year,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseSyncedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseSyncedMessageFromJSON(data []byte) (*ExpenseSyncedMessage, error) {
	var msg ExpenseSyncedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
