package core

import "time"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name    string  `json:"name"`
	Amount  int64   `json:"amount"`
	Percent float64 `json:"percent"`
}

// DayAmount is one point of a daily expense series.
type DayAmount struct {
	Day    time.Time `json:"day"`
	Label  string    `json:"label"`
	Amount int64     `json:"amount"`
}

// BudgetLevel grades how much of the monthly budget is used.
type BudgetLevel string

const (
	BudgetSafe    BudgetLevel = "safe"
	BudgetWarning BudgetLevel = "warning"
	BudgetDanger  BudgetLevel = "danger"
)

// BudgetStatus is the current month measured against the threshold.
type BudgetStatus struct {
	Threshold    int64       `json:"threshold"`
	MonthExpense int64       `json:"monthExpense"`
	Remaining    int64       `json:"remaining"`
	Utilization  float64     `json:"utilization"`
	HasBudget    bool        `json:"hasBudget"`
	Level        BudgetLevel `json:"level"`
}

func (l BudgetLevel) Valid() bool {
	return l == BudgetSafe || l == BudgetWarning || l == BudgetDanger
}

// Severity orders levels so escalations can be detected.
func (l BudgetLevel) Severity() int {
	switch l {
	case BudgetWarning:
		return 1
	case BudgetDanger:
		return 2
	default:
		return 0
	}
}

// LevelFor grades a utilization percentage.
func LevelFor(utilization float64) BudgetLevel {
	switch {
	case utilization > 90:
		return BudgetDanger
	case utilization > 75:
		return BudgetWarning
	default:
		return BudgetSafe
	}
}
