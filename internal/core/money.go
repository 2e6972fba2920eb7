// Package core provides money parsing and handling utilities.
//
// This file contains the amount sanitizer used for user input and the
// percentage math shared by reports and debts.
package core

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount turns raw user input into an amount in the smallest currency
// unit. Every non-digit character is discarded, so "Rp 25.000" parses as
// 25000. Input without any digit is rejected.
//
// Examples:
//
//	ParseAmount("25000")     -> 25000, nil
//	ParseAmount("Rp 25.000") -> 25000, nil
//	ParseAmount("-15")       -> 15, nil
//	ParseAmount("abc")       -> 0, ErrInvalidAmount
func ParseAmount(raw string) (int64, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// Percent returns part/total*100 rounded to two decimals, or 0 when total
// is not positive.
func Percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Mul(hundred).
		DivRound(decimal.NewFromInt(total), 2).
		InexactFloat64()
}

// ProgressPercent is the paid share of the principal. A debt with no
// principal counts as fully paid.
func (d Debt) ProgressPercent() float64 {
	if d.Amount <= 0 {
		return 100
	}
	return Percent(d.PaidAmount, d.Amount)
}

// FormatRupiah renders an amount the way Indonesian receipts do, e.g. "Rp 1.250.000".
func FormatRupiah(amount int64) string {
	return "Rp " + strings.ReplaceAll(humanize.Comma(amount), ",", ".")
}
