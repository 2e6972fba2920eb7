// Package report derives balances, budget status, category breakdowns and
// the daily expense trend from transaction slices. Nothing here keeps
// state; every figure is recomputed from its input.
package report

import (
	"slices"
	"time"

	"dompet/internal/core"
)

// TrendDays is the length of the daily expense series.
const TrendDays = 7

// TotalBalance is income minus expense over whatever it is given. Callers
// pass the full store so the figure ignores the active window.
func TotalBalance(all []core.Transaction) int64 {
	return PeriodIncome(all) - PeriodExpense(all)
}

func PeriodIncome(txs []core.Transaction) int64 {
	return sumOf(txs, core.Income)
}

func PeriodExpense(txs []core.Transaction) int64 {
	return sumOf(txs, core.Expense)
}

// CategoryTotals groups expenses by category, largest first. Categories
// with equal totals keep the order in which they were first seen.
func CategoryTotals(txs []core.Transaction) []core.CategoryAmount {
	var out []core.CategoryAmount
	index := map[string]int{}
	var grand int64
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		grand += t.Amount
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, core.CategoryAmount{Name: t.Category})
		}
		out[i].Amount += t.Amount
	}
	slices.SortStableFunc(out, func(a, b core.CategoryAmount) int {
		switch {
		case a.Amount > b.Amount:
			return -1
		case a.Amount < b.Amount:
			return 1
		default:
			return 0
		}
	})
	for i := range out {
		out[i].Percent = PercentOfTotal(out[i].Amount, grand)
	}
	return out
}

// PercentOfTotal is part as a percentage of total, 0 when total is 0.
func PercentOfTotal(part, total int64) float64 {
	return core.Percent(part, total)
}

// SevenDayTrend sums expenses per calendar day for today and the six days
// before it, oldest first. Days are taken in now's location.
func SevenDayTrend(txs []core.Transaction, now time.Time) []core.DayAmount {
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	points := make([]core.DayAmount, TrendDays)
	for i := range points {
		day := today.AddDate(0, 0, i-(TrendDays-1))
		points[i] = core.DayAmount{Day: day, Label: day.Format("Mon")}
	}
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		for i := range points {
			if core.SameDay(t.Date, points[i].Day, loc) {
				points[i].Amount += t.Amount
				break
			}
		}
	}
	return points
}

// MonthExpense sums the expenses of now's calendar month. Callers pass the
// full store regardless of the active window.
func MonthExpense(all []core.Transaction, now time.Time) int64 {
	return PeriodExpense(core.WindowMonth.Filter(all, now))
}

// Utilization is expense as a percentage of threshold, clamped to 100. A
// zero threshold means no budget and yields 0.
func Utilization(expense, threshold int64) float64 {
	if threshold <= 0 {
		return 0
	}
	return min(core.Percent(expense, threshold), 100)
}

// Budget measures this month's spending against threshold.
func Budget(all []core.Transaction, threshold int64, now time.Time) core.BudgetStatus {
	expense := MonthExpense(all, now)
	u := Utilization(expense, threshold)
	var remaining int64
	if threshold > 0 {
		remaining = threshold - expense
	}
	return core.BudgetStatus{
		Threshold:    threshold,
		MonthExpense: expense,
		Remaining:    remaining,
		Utilization:  u,
		HasBudget:    threshold > 0,
		Level:        core.LevelFor(u),
	}
}

// Recent returns at most n transactions from the front of txs.
func Recent(txs []core.Transaction, n int) []core.Transaction {
	if len(txs) > n {
		txs = txs[:n]
	}
	return append([]core.Transaction(nil), txs...)
}

// Search keeps the transactions whose title or category contains q.
func Search(txs []core.Transaction, q string) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.MatchesQuery(q) {
			out = append(out, t)
		}
	}
	return out
}

func sumOf(txs []core.Transaction, kind core.TxType) int64 {
	var total int64
	for _, t := range txs {
		if t.Type == kind {
			total += t.Amount
		}
	}
	return total
}
