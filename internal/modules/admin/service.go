package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"studiobooking/internal/domain"
	"studiobooking/internal/email"
	"studiobooking/internal/modules/feed"
	"studiobooking/internal/modules/lifecycle"
	"studiobooking/internal/pkg/validator"
	"studiobooking/internal/repository"
)

type Service struct {
	bookings  BookingRepository
	lifecycle Lifecycle
	policies  PolicyRepository
	catalog   CatalogRepository
	feed      Broadcaster
	loggerf   func(format string, args ...any)
}

func NewService(
	bookings BookingRepository,
	lc Lifecycle,
	policies PolicyRepository,
	catalog CatalogRepository,
	broadcaster Broadcaster,
	loggerf func(format string, args ...any),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...any) {}
	}
	return &Service{
		bookings:  bookings,
		lifecycle: lc,
		policies:  policies,
		catalog:   catalog,
		feed:      broadcaster,
		loggerf:   loggerf,
	}
}

// -------------------- bookings --------------------

func (s *Service) ListBookings(ctx context.Context, p ListParams) ([]domain.Booking, int64, error) {
	if p.Status != "" && !validStatus(p.Status) {
		return nil, 0, ErrInvalidStatus
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return s.bookings.List(ctx, repository.ListFilter{
		Status:   p.Status,
		DateFrom: p.DateFrom,
		DateTo:   p.DateTo,
		Limit:    p.Limit,
		Offset:   p.Offset,
	})
}

func (s *Service) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// UpdateStatus runs the requested transition and pushes the outcome to the
// dashboard feed. no_show is the one status set directly instead of going
// through the side-effect pipeline.
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req UpdateStatusRequest) (*lifecycle.Result, error) {
	target := domain.BookingStatus(req.Status)
	if !validStatus(req.Status) || target == domain.BookingPending {
		return nil, ErrInvalidStatus
	}

	var result *lifecycle.Result
	if target == domain.BookingNoShow {
		b, err := s.lifecycle.MarkNoShow(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		result = &lifecycle.Result{Booking: b}
	} else {
		var err error
		result, err = s.lifecycle.Transition(ctx, bookingID, target, req.Reason)
		if err != nil {
			return nil, err
		}
	}

	s.broadcast(feed.Event{
		Type:      "booking_status_changed",
		BookingID: bookingID,
		Status:    string(result.Booking.Status),
		Message:   result.Summary(),
	})
	return result, nil
}

func (s *Service) UpdateNotes(ctx context.Context, bookingID int64, notes string) (*domain.Booking, error) {
	if _, err := s.GetBooking(ctx, bookingID); err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateFields(ctx, bookingID, map[string]any{"notes": notes}); err != nil {
		return nil, err
	}
	return s.bookings.GetByID(ctx, bookingID)
}

func (s *Service) RegenerateInvoice(ctx context.Context, bookingID int64) (*lifecycle.Result, error) {
	result, err := s.lifecycle.RegenerateInvoice(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.broadcast(feed.Event{
		Type:      "invoice_regenerated",
		BookingID: bookingID,
		Status:    string(result.Booking.Status),
		Message:   result.Summary(),
	})
	return result, nil
}

func (s *Service) ResendEmail(ctx context.Context, bookingID int64, template string) (*lifecycle.Result, error) {
	tpl := email.Template(template)
	switch tpl {
	case email.TemplateConfirmed, email.TemplateProforma, email.TemplatePaid,
		email.TemplateCompleted, email.TemplateCancelled, email.TemplateAdminCancelled:
	default:
		return nil, ErrInvalidTemplate
	}
	return s.lifecycle.ResendEmail(ctx, bookingID, tpl)
}

// -------------------- cancellation policy --------------------

func (s *Service) GetPolicy(ctx context.Context) ([]domain.CancellationRule, error) {
	return s.policies.GetRules(ctx)
}

// ReplacePolicy swaps the whole tier table. An empty rule set is allowed and
// means "fall back to the built-in default".
func (s *Service) ReplacePolicy(ctx context.Context, req ReplacePolicyRequest) ([]domain.CancellationRule, error) {
	seen := make(map[int]struct{}, len(req.Rules))
	rules := make([]domain.CancellationRule, 0, len(req.Rules))
	for _, r := range req.Rules {
		if r.DaysBefore < 0 || r.FeePercent < 0 || r.FeePercent > 100 {
			return nil, ErrInvalidPolicy
		}
		if _, dup := seen[r.DaysBefore]; dup {
			return nil, fmt.Errorf("%w: duplicate tier for %d days", ErrInvalidPolicy, r.DaysBefore)
		}
		seen[r.DaysBefore] = struct{}{}
		rules = append(rules, domain.CancellationRule{DaysBefore: r.DaysBefore, FeePercent: r.FeePercent})
	}

	if err := s.policies.ReplaceRules(ctx, rules); err != nil {
		return nil, err
	}
	return s.policies.GetRules(ctx)
}

// -------------------- catalog --------------------

func (s *Service) ListTimeSlots(ctx context.Context) ([]domain.TimeSlot, error) {
	return s.catalog.ListTimeSlots(ctx, false)
}

func (s *Service) SaveTimeSlot(ctx context.Context, id int64, req TimeSlotRequest) (*domain.TimeSlot, error) {
	if _, err := time.Parse("15:04", req.StartTime); err != nil {
		return nil, ErrValidation
	}
	if _, err := time.Parse("15:04", req.EndTime); err != nil {
		return nil, ErrValidation
	}

	slot := &domain.TimeSlot{
		ID:        id,
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Price:     req.Price,
		Active:    true,
	}
	if req.Active != nil {
		slot.Active = *req.Active
	}
	if fields := validator.Validate(slot); fields != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, fields)
	}
	if err := s.catalog.SaveTimeSlot(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *Service) DeleteTimeSlot(ctx context.Context, id int64) error {
	return s.catalog.DeleteTimeSlot(ctx, id)
}

func (s *Service) ListExtras(ctx context.Context) ([]domain.Extra, error) {
	return s.catalog.ListExtras(ctx, false)
}

func (s *Service) SaveExtra(ctx context.Context, id int64, req ExtraRequest) (*domain.Extra, error) {
	extra := &domain.Extra{ID: id, Name: req.Name, Price: req.Price, Active: true}
	if req.Active != nil {
		extra.Active = *req.Active
	}
	if fields := validator.Validate(extra); fields != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, fields)
	}
	if err := s.catalog.SaveExtra(ctx, extra); err != nil {
		return nil, err
	}
	return extra, nil
}

func (s *Service) DeleteExtra(ctx context.Context, id int64) error {
	return s.catalog.DeleteExtra(ctx, id)
}

func (s *Service) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	return s.catalog.ListCoupons(ctx)
}

func (s *Service) SaveCoupon(ctx context.Context, id int64, req CouponRequest) (*domain.Coupon, error) {
	coupon := &domain.Coupon{ID: id, Code: req.Code, DiscountPercent: req.DiscountPercent, Active: true}
	if req.Active != nil {
		coupon.Active = *req.Active
	}
	if req.ValidUntil != "" {
		until, err := time.Parse("2006-01-02", req.ValidUntil)
		if err != nil {
			return nil, ErrValidation
		}
		coupon.ValidUntil = &until
	}
	if fields := validator.Validate(coupon); fields != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, fields)
	}
	if err := s.catalog.SaveCoupon(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *Service) DeleteCoupon(ctx context.Context, id int64) error {
	return s.catalog.DeleteCoupon(ctx, id)
}

func (s *Service) ListOpeningHours(ctx context.Context) ([]domain.OpeningHours, error) {
	return s.catalog.ListOpeningHours(ctx)
}

func (s *Service) SaveOpeningHours(ctx context.Context, req OpeningHoursRequest) (*domain.OpeningHours, error) {
	if !req.Closed {
		if _, err := time.Parse("15:04", req.OpenTime); err != nil {
			return nil, ErrValidation
		}
		if _, err := time.Parse("15:04", req.CloseTime); err != nil {
			return nil, ErrValidation
		}
	}

	h := &domain.OpeningHours{
		DayOfWeek: req.DayOfWeek,
		OpenTime:  req.OpenTime,
		CloseTime: req.CloseTime,
		Closed:    req.Closed,
	}
	if fields := validator.Validate(h); fields != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, fields)
	}
	if err := s.catalog.UpsertOpeningHours(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// -------------------- helpers --------------------

func (s *Service) broadcast(ev feed.Event) {
	if s.feed == nil {
		return
	}
	s.feed.Broadcast(ev)
}

func validStatus(status string) bool {
	switch domain.BookingStatus(status) {
	case domain.BookingPending, domain.BookingConfirmed, domain.BookingPaid,
		domain.BookingCompleted, domain.BookingCancelled, domain.BookingNoShow:
		return true
	}
	return false
}
