package booking

type CreateBookingRequest struct {
	BookingDate string  `json:"booking_date" binding:"required"` // "2006-01-02"
	TimeSlotID  int64   `json:"time_slot_id" binding:"required"`
	ExtraIDs    []int64 `json:"extra_ids"`
	CouponCode  string  `json:"coupon_code"`
	Notes       string  `json:"notes"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// CancellationQuoteResponse previews what a cancellation would cost right now.
type CancellationQuoteResponse struct {
	BookingID       int64 `json:"booking_id"`
	TotalPrice      int   `json:"total_price"`
	DaysUntil       int   `json:"days_until"`
	FeePercent      int   `json:"fee_percent"`
	CancellationFee int   `json:"cancellation_fee"`
	Refund          int   `json:"refund"`
	Cancellable     bool  `json:"cancellable"`
}
