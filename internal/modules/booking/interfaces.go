package booking

import (
	"context"
	"time"

	"studiobooking/internal/cancelfee"
	"studiobooking/internal/domain"
	"studiobooking/internal/modules/lifecycle"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error)
	CountActiveForSlot(ctx context.Context, date time.Time, slotID int64) (int64, error)
}

// CatalogReader is the read-only slice of the catalog the booking flow needs.
type CatalogReader interface {
	GetTimeSlot(ctx context.Context, id int64) (*domain.TimeSlot, error)
	GetExtrasByIDs(ctx context.Context, ids []int64) ([]domain.Extra, error)
	GetValidCoupon(ctx context.Context, code string, at time.Time) (*domain.Coupon, error)
	ListOpeningHours(ctx context.Context) ([]domain.OpeningHours, error)
}

// Lifecycle is the transition orchestrator; the customer flow only ever asks
// it to cancel and to quote.
type Lifecycle interface {
	Transition(ctx context.Context, bookingID int64, target domain.BookingStatus, reason string) (*lifecycle.Result, error)
	QuoteCancellation(ctx context.Context, b *domain.Booking) cancelfee.Quote
}
