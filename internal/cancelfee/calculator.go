// Package cancelfee computes the cancellation fee for a booking from a
// tiered policy. It is a pure calculator: no I/O, no clock of its own, and
// no business-rule enforcement (the lifecycle service decides whether a
// cancellation is allowed at all).
package cancelfee

import (
	"math"
	"sort"
	"time"

	"github.com/jinzhu/now"

	"studiobooking/internal/domain"
)

// Quote is the outcome of a fee computation. Fee is in whole Forint.
type Quote struct {
	Fee        int `json:"fee"`
	FeePercent int `json:"fee_percent"`
	DaysUntil  int `json:"days_until"`
}

// Refund is what the customer gets back when the booking was already paid.
// Informational only, money movement is handled manually.
func (q Quote) Refund(totalPrice int) int {
	return totalPrice - q.Fee
}

// DefaultPolicy is used when no rules are configured: a week of notice is
// free, 3-6 days costs half, 2 days 70%, under 2 days full price.
func DefaultPolicy() []domain.CancellationRule {
	return []domain.CancellationRule{
		{DaysBefore: 7, FeePercent: 0},
		{DaysBefore: 3, FeePercent: 50},
		{DaysBefore: 2, FeePercent: 70},
		{DaysBefore: 1, FeePercent: 100},
	}
}

// Calculate evaluates the policy as a step function over the number of whole
// calendar days between at and bookingDate, both taken in the studio
// timezone. A booking at any time today counts as zero days of notice; a
// booking already in the past yields a negative daysUntil and the maximum
// fee rather than an error. The tier with the largest threshold not
// exceeding the notice period wins; if none qualifies the percent defaults
// to 100. Fee rounding is half-up.
func Calculate(bookingDate time.Time, totalPrice int, rules []domain.CancellationRule, at time.Time, loc *time.Location) Quote {
	if loc == nil {
		loc = time.Local
	}

	today := now.With(at.In(loc)).BeginningOfDay()
	day := now.With(bookingDate.In(loc)).BeginningOfDay()
	// Round instead of truncate so DST-shortened days still count as one.
	daysUntil := int(math.Round(day.Sub(today).Hours() / 24))

	if len(rules) == 0 {
		rules = DefaultPolicy()
	}
	sorted := make([]domain.CancellationRule, len(rules))
	copy(sorted, rules)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DaysBefore > sorted[j].DaysBefore })

	feePercent := 100
	for _, r := range sorted {
		if r.DaysBefore <= daysUntil {
			feePercent = r.FeePercent
			break
		}
	}
	if feePercent > 100 {
		feePercent = 100
	}
	if feePercent < 0 {
		feePercent = 0
	}

	q := Quote{FeePercent: feePercent, DaysUntil: daysUntil}
	if totalPrice > 0 {
		q.Fee = (totalPrice*feePercent + 50) / 100
	}
	return q
}
