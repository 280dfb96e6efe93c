package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jinzhu/now"
	"gorm.io/gorm"

	"studiobooking/internal/cancelfee"
	"studiobooking/internal/domain"
	"studiobooking/internal/modules/lifecycle"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service struct {
	bookings  BookingRepository
	catalog   CatalogReader
	lifecycle Lifecycle

	loc   *time.Location
	clock func() time.Time
}

func NewService(bookings BookingRepository, catalog CatalogReader, lc Lifecycle, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		bookings:  bookings,
		catalog:   catalog,
		lifecycle: lc,
		loc:       loc,
		clock:     time.Now,
	}
}

// CreateBooking validates the request, prices it and persists the booking in
// pending status. The partial unique index on (booking_date, time_slot_id) is
// the final word on double booking; CountActiveForSlot only exists to answer
// with a friendly error before we hit the constraint.
func (s *Service) CreateBooking(ctx context.Context, userID int64, req CreateBookingRequest) (*domain.Booking, error) {
	date, err := time.ParseInLocation("2006-01-02", req.BookingDate, s.loc)
	if err != nil {
		return nil, ErrValidation
	}
	dayStart := now.With(date).BeginningOfDay()
	if !dayStart.After(s.clock()) {
		return nil, ErrDateInPast
	}

	slot, err := s.catalog.GetTimeSlot(ctx, req.TimeSlotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	if !slot.Active {
		return nil, ErrSlotNotFound
	}

	if err := s.checkOpeningHours(ctx, dayStart); err != nil {
		return nil, err
	}

	cnt, err := s.bookings.CountActiveForSlot(ctx, dayStart, slot.ID)
	if err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, ErrSlotTaken
	}

	extrasPrice, err := s.priceExtras(ctx, req.ExtraIDs)
	if err != nil {
		return nil, err
	}

	subtotal := slot.Price + extrasPrice
	discount := 0
	if req.CouponCode != "" {
		coupon, err := s.catalog.GetValidCoupon(ctx, req.CouponCode, s.clock())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidCoupon
			}
			return nil, err
		}
		discount = (subtotal*coupon.DiscountPercent + 50) / 100
	}
	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	b := &domain.Booking{
		UserID:         userID,
		BookingDate:    dayStart,
		TimeSlotID:     slot.ID,
		BasePrice:      slot.Price,
		ExtrasPrice:    extrasPrice,
		DiscountAmount: discount,
		TotalPrice:     total,
		Status:         domain.BookingPending,
		CouponCode:     req.CouponCode,
		Notes:          req.Notes,
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "idx_no_double_booking" {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) GetMyBookings(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.bookings.GetByUserID(ctx, userID, limit, offset)
}

func (s *Service) GetBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	return b, nil
}

// CancelBooking hands the actual cancellation to the lifecycle after the
// ownership check; the fee and all side effects are its business.
func (s *Service) CancelBooking(ctx context.Context, userID, bookingID int64, reason string) (*lifecycle.Result, error) {
	if _, err := s.GetBooking(ctx, userID, bookingID); err != nil {
		return nil, err
	}
	return s.lifecycle.Transition(ctx, bookingID, domain.BookingCancelled, reason)
}

// QuoteCancellation previews the fee without touching the booking.
func (s *Service) QuoteCancellation(ctx context.Context, userID, bookingID int64) (*CancellationQuoteResponse, error) {
	b, err := s.GetBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	quote := s.lifecycle.QuoteCancellation(ctx, b)
	return s.quoteResponse(b, quote), nil
}

func (s *Service) quoteResponse(b *domain.Booking, quote cancelfee.Quote) *CancellationQuoteResponse {
	dayStart := now.With(b.BookingDate.In(s.loc)).BeginningOfDay()
	return &CancellationQuoteResponse{
		BookingID:       b.ID,
		TotalPrice:      b.TotalPrice,
		DaysUntil:       quote.DaysUntil,
		FeePercent:      quote.FeePercent,
		CancellationFee: quote.Fee,
		Refund:          quote.Refund(b.TotalPrice),
		Cancellable:     b.Status.IsCancellable() && dayStart.After(s.clock()),
	}
}

func (s *Service) checkOpeningHours(ctx context.Context, day time.Time) error {
	hours, err := s.catalog.ListOpeningHours(ctx)
	if err != nil {
		return err
	}
	// An empty schedule means the studio never closes; only an explicit
	// closed row blocks the day.
	for _, h := range hours {
		if h.DayOfWeek == int(day.Weekday()) && h.Closed {
			return ErrStudioClosed
		}
	}
	return nil
}

func (s *Service) priceExtras(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	extras, err := s.catalog.GetExtrasByIDs(ctx, unique)
	if err != nil {
		return 0, err
	}
	if len(extras) != len(unique) {
		return 0, ErrValidation
	}

	total := 0
	for _, e := range extras {
		total += e.Price
	}
	return total, nil
}
