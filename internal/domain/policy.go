package domain

// CancellationRule is one tier of the cancellation policy: bookings cancelled
// with at least DaysBefore whole days of notice are charged FeePercent of the
// total price. The set of rules forms a step function over days-until.
type CancellationRule struct {
	ID         int64 `json:"id" gorm:"primaryKey"`
	DaysBefore int   `json:"days_before" validate:"gte=0"`
	FeePercent int   `json:"fee_percent" validate:"gte=0,lte=100"`
}

func (CancellationRule) TableName() string {
	return "cancellation_rules"
}
