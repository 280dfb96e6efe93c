package lifecycle

import (
	"context"

	"studiobooking/internal/calendar"
	"studiobooking/internal/domain"
	"studiobooking/internal/email"
	"studiobooking/internal/invoicing"
)

// BookingRepository is the persistence surface the orchestrator needs. The
// conditional update is the serialization point: two concurrent transitions
// against the same booking cannot both see their expected current status.
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatusIf(ctx context.Context, id int64, from, to domain.BookingStatus, fields map[string]any) (bool, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
}

// PolicyReader supplies the cancellation tiers; an empty result means the
// default policy applies.
type PolicyReader interface {
	GetRules(ctx context.Context) ([]domain.CancellationRule, error)
}

type Invoicer interface {
	Configured() bool
	Issue(ctx context.Context, req invoicing.Request) (invoicing.Document, error)
	Reverse(ctx context.Context, invoiceNumber string) (string, error)
}

type Mailer interface {
	Configured() bool
	AdminAddr() string
	Send(ctx context.Context, to string, tpl email.Template, data email.Data) error
}

type CalendarSync interface {
	Sync(ctx context.Context, b *domain.Booking, action calendar.Action) (calendar.Result, error)
}
