package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"dompet/internal/core"
)

// BudgetAlertMessage is published when this month's spending moves the
// budget into a more severe level.
type BudgetAlertMessage struct {
	Month        string           `json:"month"`
	Level        core.BudgetLevel `json:"level"`
	Previous     core.BudgetLevel `json:"previous"`
	Utilization  float64          `json:"utilization"`
	MonthExpense int64            `json:"monthExpense"`
	Threshold    int64            `json:"threshold"`
	Timestamp    time.Time        `json:"timestamp"`
}

// NewBudgetAlertMessage builds an alert for the month containing now.
func NewBudgetAlertMessage(previous core.BudgetStatus, current core.BudgetStatus, now time.Time) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		Month:        now.Format("2006-01"),
		Level:        current.Level,
		Previous:     previous.Level,
		Utilization:  current.Utilization,
		MonthExpense: current.MonthExpense,
		Threshold:    current.Threshold,
		Timestamp:    now.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON decodes an alert. A message without a month or
// with an unknown level is an error, the consumer drops it.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Month == "" {
		return nil, fmt.Errorf("budget alert without month")
	}
	if !msg.Level.Valid() {
		return nil, fmt.Errorf("unknown budget level %q", msg.Level)
	}
	return &msg, nil
}
