// Package catalog is the public browse surface: time slots, extras, opening
// hours and per-date availability.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jinzhu/now"

	"studiobooking/internal/domain"
)

var ErrValidation = errors.New("validation error")

type CatalogReader interface {
	ListTimeSlots(ctx context.Context, activeOnly bool) ([]domain.TimeSlot, error)
	ListExtras(ctx context.Context, activeOnly bool) ([]domain.Extra, error)
	ListOpeningHours(ctx context.Context) ([]domain.OpeningHours, error)
}

type BookingCounter interface {
	CountActiveForSlot(ctx context.Context, date time.Time, slotID int64) (int64, error)
}

type Service struct {
	catalog  CatalogReader
	bookings BookingCounter
	loc      *time.Location
}

func NewService(catalog CatalogReader, bookings BookingCounter, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{catalog: catalog, bookings: bookings, loc: loc}
}

func (s *Service) ListTimeSlots(ctx context.Context) ([]domain.TimeSlot, error) {
	return s.catalog.ListTimeSlots(ctx, true)
}

func (s *Service) ListExtras(ctx context.Context) ([]domain.Extra, error) {
	return s.catalog.ListExtras(ctx, true)
}

func (s *Service) ListOpeningHours(ctx context.Context) ([]domain.OpeningHours, error) {
	return s.catalog.ListOpeningHours(ctx)
}

// GetAvailability returns every active slot for the date with its booked
// state, so the booking form can grey out what is gone.
func (s *Service) GetAvailability(ctx context.Context, dateStr string) (*AvailabilityResponse, error) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, s.loc)
	if err != nil {
		return nil, ErrValidation
	}
	day := now.With(date).BeginningOfDay()

	resp := &AvailabilityResponse{Date: dateStr, Slots: []SlotAvailability{}}

	hours, err := s.catalog.ListOpeningHours(ctx)
	if err != nil {
		return nil, err
	}
	for _, h := range hours {
		if h.DayOfWeek == int(day.Weekday()) && h.Closed {
			resp.Closed = true
			return resp, nil
		}
	}

	slots, err := s.catalog.ListTimeSlots(ctx, true)
	if err != nil {
		return nil, err
	}
	for _, slot := range slots {
		cnt, err := s.bookings.CountActiveForSlot(ctx, day, slot.ID)
		if err != nil {
			return nil, err
		}
		resp.Slots = append(resp.Slots, SlotAvailability{Slot: slot, Taken: cnt > 0})
	}
	return resp, nil
}
