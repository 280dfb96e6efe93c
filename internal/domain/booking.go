package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingPaid      BookingStatus = "paid"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingNoShow    BookingStatus = "no_show"
)

// IsTerminal reports whether no further transition is accepted from s.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingNoShow
}

// IsCancellable reports whether a booking in status s may still be cancelled.
func (s BookingStatus) IsCancellable() bool {
	return s == BookingPending || s == BookingConfirmed || s == BookingPaid
}

// Booking is one studio reservation. All money fields are whole Forint.
type Booking struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id" validate:"required"`
	BookingDate time.Time `json:"booking_date" validate:"required"`
	TimeSlotID  int64     `json:"time_slot_id" validate:"required"`

	BasePrice      int `json:"base_price" validate:"gte=0"`
	ExtrasPrice    int `json:"extras_price" validate:"gte=0"`
	DiscountAmount int `json:"discount_amount" validate:"gte=0"`
	TotalPrice     int `json:"total_price" validate:"gte=0"`

	Status BookingStatus `json:"status"`

	// Invoicing. Proforma is issued on confirm, the final invoice on paid,
	// storno and the fee invoice on cancel.
	ProformaNumber            string `json:"proforma_number,omitempty"`
	ProformaURL               string `json:"proforma_url,omitempty"`
	InvoiceNumber             string `json:"invoice_number,omitempty"`
	InvoiceURL                string `json:"invoice_url,omitempty"`
	StornoInvoiceNumber       string `json:"storno_invoice_number,omitempty"`
	CancellationInvoiceNumber string `json:"cancellation_invoice_number,omitempty"`
	CancellationInvoiceURL    string `json:"cancellation_invoice_url,omitempty"`

	CancellationFee    int        `json:"cancellation_fee,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	PaidAt             *time.Time `json:"paid_at,omitempty"`

	CouponCode string `json:"coupon_code,omitempty"`
	Notes      string `json:"notes,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	TimeSlot *TimeSlot `json:"time_slot,omitempty" gorm:"foreignKey:TimeSlotID"`
}
