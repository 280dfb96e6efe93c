package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"studiobooking/internal/domain"
)

var budapest, _ = time.LoadLocation("Europe/Budapest")

type MockCatalogReader struct {
	mock.Mock
}

func (m *MockCatalogReader) ListTimeSlots(ctx context.Context, activeOnly bool) ([]domain.TimeSlot, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeSlot), args.Error(1)
}

func (m *MockCatalogReader) ListExtras(ctx context.Context, activeOnly bool) ([]domain.Extra, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Extra), args.Error(1)
}

func (m *MockCatalogReader) ListOpeningHours(ctx context.Context) ([]domain.OpeningHours, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OpeningHours), args.Error(1)
}

type MockBookingCounter struct {
	mock.Mock
}

func (m *MockBookingCounter) CountActiveForSlot(ctx context.Context, date time.Time, slotID int64) (int64, error) {
	args := m.Called(ctx, date, slotID)
	return args.Get(0).(int64), args.Error(1)
}

func TestGetAvailability_MarksTakenSlots(t *testing.T) {
	catalog := new(MockCatalogReader)
	bookings := new(MockBookingCounter)
	svc := NewService(catalog, bookings, budapest)

	catalog.On("ListOpeningHours", mock.Anything).Return(nil, nil)
	catalog.On("ListTimeSlots", mock.Anything, true).Return([]domain.TimeSlot{
		{ID: 1, Name: "Reggeli fotózás"},
		{ID: 2, Name: "Délelőtti fotózás"},
	}, nil)
	bookings.On("CountActiveForSlot", mock.Anything, mock.Anything, int64(1)).Return(int64(0), nil)
	bookings.On("CountActiveForSlot", mock.Anything, mock.Anything, int64(2)).Return(int64(1), nil)

	resp, err := svc.GetAvailability(context.Background(), "2026-03-20")

	assert.NoError(t, err)
	assert.False(t, resp.Closed)
	assert.Len(t, resp.Slots, 2)
	assert.False(t, resp.Slots[0].Taken)
	assert.True(t, resp.Slots[1].Taken)
}

func TestGetAvailability_ClosedDay(t *testing.T) {
	catalog := new(MockCatalogReader)
	bookings := new(MockBookingCounter)
	svc := NewService(catalog, bookings, budapest)

	// 2026-03-22 is a Sunday.
	catalog.On("ListOpeningHours", mock.Anything).Return([]domain.OpeningHours{
		{DayOfWeek: 0, Closed: true},
	}, nil)

	resp, err := svc.GetAvailability(context.Background(), "2026-03-22")

	assert.NoError(t, err)
	assert.True(t, resp.Closed)
	assert.Empty(t, resp.Slots)
	catalog.AssertNotCalled(t, "ListTimeSlots", mock.Anything, mock.Anything)
}

func TestGetAvailability_BadDate(t *testing.T) {
	svc := NewService(new(MockCatalogReader), new(MockBookingCounter), budapest)

	_, err := svc.GetAvailability(context.Background(), "március 20")
	assert.ErrorIs(t, err, ErrValidation)
}
