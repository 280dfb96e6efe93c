package cancelfee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"studiobooking/internal/domain"
)

var budapest = mustLoad("Europe/Budapest")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, budapest)
}

func TestCalculate_DefaultPolicyTiers(t *testing.T) {
	at := date(2026, 3, 10)

	cases := []struct {
		name       string
		bookingDay time.Time
		totalPrice int
		wantPct    int
		wantFee    int
		wantDays   int
	}{
		{"ten days out is free", date(2026, 3, 20), 50000, 0, 0, 10},
		{"exactly a week out is free", date(2026, 3, 17), 50000, 0, 0, 7},
		{"five days costs half", date(2026, 3, 15), 50000, 50, 25000, 5},
		{"two days costs 70 percent", date(2026, 3, 12), 98000, 70, 68600, 2},
		{"same day costs full price", date(2026, 3, 10), 35000, 100, 35000, 0},
		{"tomorrow costs full price", date(2026, 3, 11), 35000, 100, 35000, 1},
		{"already past still deterministic", date(2026, 3, 8), 35000, 100, 35000, -2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := Calculate(tc.bookingDay, tc.totalPrice, nil, at, budapest)
			assert.Equal(t, tc.wantPct, q.FeePercent)
			assert.Equal(t, tc.wantFee, q.Fee)
			assert.Equal(t, tc.wantDays, q.DaysUntil)
		})
	}
}

func TestCalculate_TimeOfDayIrrelevant(t *testing.T) {
	at := time.Date(2026, 3, 10, 23, 55, 0, 0, budapest)
	booking := time.Date(2026, 3, 12, 0, 5, 0, 0, budapest)

	q := Calculate(booking, 10000, nil, at, budapest)
	assert.Equal(t, 2, q.DaysUntil)
	assert.Equal(t, 70, q.FeePercent)
}

func TestCalculate_ZeroPrice(t *testing.T) {
	q := Calculate(date(2026, 3, 10), 0, nil, date(2026, 3, 10), budapest)
	assert.Equal(t, 100, q.FeePercent)
	assert.Equal(t, 0, q.Fee)
}

func TestCalculate_RuleOrderIrrelevant(t *testing.T) {
	shuffled := []domain.CancellationRule{
		{DaysBefore: 2, FeePercent: 70},
		{DaysBefore: 7, FeePercent: 0},
		{DaysBefore: 1, FeePercent: 100},
		{DaysBefore: 3, FeePercent: 50},
	}

	q := Calculate(date(2026, 3, 15), 50000, shuffled, date(2026, 3, 10), budapest)
	assert.Equal(t, 50, q.FeePercent)
	assert.Equal(t, 25000, q.Fee)
}

func TestCalculate_NoQualifyingTierFailsSafe(t *testing.T) {
	rules := []domain.CancellationRule{{DaysBefore: 5, FeePercent: 20}}

	q := Calculate(date(2026, 3, 12), 40000, rules, date(2026, 3, 10), budapest)
	assert.Equal(t, 100, q.FeePercent)
	assert.Equal(t, 40000, q.Fee)
}

func TestCalculate_PercentClamped(t *testing.T) {
	rules := []domain.CancellationRule{{DaysBefore: 0, FeePercent: 150}}

	q := Calculate(date(2026, 3, 15), 10000, rules, date(2026, 3, 10), budapest)
	assert.Equal(t, 100, q.FeePercent)
	assert.Equal(t, 10000, q.Fee)
}

func TestCalculate_FeeNeverExceedsTotal(t *testing.T) {
	at := date(2026, 3, 10)
	for days := -3; days <= 14; days++ {
		q := Calculate(at.AddDate(0, 0, days), 98765, nil, at, budapest)
		assert.LessOrEqual(t, q.Fee, 98765, "days=%d", days)
		assert.GreaterOrEqual(t, q.Fee, 0, "days=%d", days)
	}
}

func TestCalculate_MonotoneNonIncreasing(t *testing.T) {
	at := date(2026, 3, 10)
	prev := 1 << 30
	for days := 0; days <= 14; days++ {
		q := Calculate(at.AddDate(0, 0, days), 50000, nil, at, budapest)
		assert.LessOrEqual(t, q.Fee, prev, "fee must not grow with more notice (days=%d)", days)
		prev = q.Fee
	}
}

func TestCalculate_HalfUpRounding(t *testing.T) {
	rules := []domain.CancellationRule{{DaysBefore: 0, FeePercent: 33}}

	// 101 * 33 / 100 = 33.33 -> 33; 105 * 33 / 100 = 34.65 -> 35
	q := Calculate(date(2026, 3, 10), 101, rules, date(2026, 3, 10), budapest)
	assert.Equal(t, 33, q.Fee)
	q = Calculate(date(2026, 3, 10), 105, rules, date(2026, 3, 10), budapest)
	assert.Equal(t, 35, q.Fee)
}

func TestCalculate_Idempotent(t *testing.T) {
	at := date(2026, 3, 10)
	a := Calculate(date(2026, 3, 13), 77000, nil, at, budapest)
	b := Calculate(date(2026, 3, 13), 77000, nil, at, budapest)
	assert.Equal(t, a, b)
}

func TestQuote_Refund(t *testing.T) {
	q := Quote{Fee: 68600, FeePercent: 70, DaysUntil: 2}
	assert.Equal(t, 29400, q.Refund(98000))
}
