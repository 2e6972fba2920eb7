package core

import (
	"fmt"
	"strings"
	"time"
)

// Window restricts period-based views to a slice of time relative to now.
type Window string

const (
	WindowAll   Window = "all"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

const weekSpan = 7 * 24 * time.Hour

// ParseWindow maps user input to a Window. Empty input means WindowAll.
func ParseWindow(s string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case "":
		return WindowAll, nil
	case WindowAll, WindowWeek, WindowMonth:
		return w, nil
	default:
		return "", fmt.Errorf("unknown window %q", s)
	}
}

// Matches reports whether ts falls inside the window ending at now.
// The week window is inclusive at both ends. The month window uses the
// calendar month of now in now's location.
func (w Window) Matches(ts, now time.Time) bool {
	switch w {
	case WindowWeek:
		return !ts.Before(now.Add(-weekSpan)) && !ts.After(now)
	case WindowMonth:
		local := ts.In(now.Location())
		return local.Year() == now.Year() && local.Month() == now.Month()
	default:
		return true
	}
}

// Filter returns the transactions inside the window, keeping their order.
func (w Window) Filter(txs []Transaction, now time.Time) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if w.Matches(t.Date, now) {
			out = append(out, t)
		}
	}
	return out
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
