package admin

import (
	"context"
	"time"

	"studiobooking/internal/domain"
	"studiobooking/internal/email"
	"studiobooking/internal/modules/feed"
	"studiobooking/internal/modules/lifecycle"
	"studiobooking/internal/repository"
)

type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, f repository.ListFilter) ([]domain.Booking, int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
}

// Lifecycle is the transition orchestrator; everything that changes a
// booking's status goes through it.
type Lifecycle interface {
	Transition(ctx context.Context, bookingID int64, target domain.BookingStatus, reason string) (*lifecycle.Result, error)
	MarkNoShow(ctx context.Context, bookingID int64) (*domain.Booking, error)
	RegenerateInvoice(ctx context.Context, bookingID int64) (*lifecycle.Result, error)
	ResendEmail(ctx context.Context, bookingID int64, tpl email.Template) (*lifecycle.Result, error)
}

type PolicyRepository interface {
	GetRules(ctx context.Context) ([]domain.CancellationRule, error)
	ReplaceRules(ctx context.Context, rules []domain.CancellationRule) error
}

type CatalogRepository interface {
	ListTimeSlots(ctx context.Context, activeOnly bool) ([]domain.TimeSlot, error)
	GetTimeSlot(ctx context.Context, id int64) (*domain.TimeSlot, error)
	SaveTimeSlot(ctx context.Context, slot *domain.TimeSlot) error
	DeleteTimeSlot(ctx context.Context, id int64) error

	ListExtras(ctx context.Context, activeOnly bool) ([]domain.Extra, error)
	SaveExtra(ctx context.Context, extra *domain.Extra) error
	DeleteExtra(ctx context.Context, id int64) error

	ListCoupons(ctx context.Context) ([]domain.Coupon, error)
	SaveCoupon(ctx context.Context, coupon *domain.Coupon) error
	DeleteCoupon(ctx context.Context, id int64) error

	ListOpeningHours(ctx context.Context) ([]domain.OpeningHours, error)
	UpsertOpeningHours(ctx context.Context, h *domain.OpeningHours) error
}

// Broadcaster pushes events to the admin dashboard feed.
type Broadcaster interface {
	Broadcast(ev feed.Event)
}

// ListParams is the admin booking list filter after query parsing.
type ListParams struct {
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}
