// Package lifecycle drives bookings through their status transitions and
// fires the per-transition side effects: invoicing, email and calendar sync.
// Side effects run sequentially and are best-effort except where noted; a
// failed step lands in the result log instead of aborting the transition.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/now"

	"studiobooking/internal/calendar"
	"studiobooking/internal/cancelfee"
	"studiobooking/internal/domain"
	"studiobooking/internal/email"
	"studiobooking/internal/invoicing"
	"studiobooking/internal/metrics"
)

type Service struct {
	bookings BookingRepository
	policies PolicyReader
	invoicer Invoicer
	mailer   Mailer
	calendar CalendarSync

	loc        *time.Location
	feeDueDays int
	loggerf    func(format string, args ...any)
	clock      func() time.Time
}

func NewService(
	bookings BookingRepository,
	policies PolicyReader,
	invoicer Invoicer,
	mailer Mailer,
	cal CalendarSync,
	loc *time.Location,
	feeDueDays int,
	loggerf func(format string, args ...any),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...any) {}
	}
	if loc == nil {
		loc = time.Local
	}
	if feeDueDays <= 0 {
		feeDueDays = 8
	}
	return &Service{
		bookings:   bookings,
		policies:   policies,
		invoicer:   invoicer,
		mailer:     mailer,
		calendar:   cal,
		loc:        loc,
		feeDueDays: feeDueDays,
		loggerf:    loggerf,
		clock:      time.Now,
	}
}

// Transition moves a booking to target and executes the side effects for
// that transition. Guard violations and hard failures return an error with
// nothing persisted; soft failures are recorded in the result steps.
func (s *Service) Transition(ctx context.Context, bookingID int64, target domain.BookingStatus, reason string) (*Result, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch target {
	case domain.BookingConfirmed:
		return s.confirm(ctx, b)
	case domain.BookingPaid:
		return s.markPaid(ctx, b)
	case domain.BookingCompleted:
		return s.complete(ctx, b)
	case domain.BookingCancelled:
		return s.cancel(ctx, b, reason)
	default:
		metrics.TransitionsTotal.WithLabelValues(string(b.Status), string(target), "rejected").Inc()
		return nil, ErrInvalidStatusTransition
	}
}

// QuoteCancellation computes the fee that would apply if the booking were
// cancelled now, falling back to the default policy when none is configured.
func (s *Service) QuoteCancellation(ctx context.Context, b *domain.Booking) cancelfee.Quote {
	rules, err := s.policies.GetRules(ctx)
	if err != nil {
		s.loggerf("level=error msg=loading cancellation policy failed, using default err=%v", err)
		rules = nil
	}
	return cancelfee.Calculate(b.BookingDate, b.TotalPrice, rules, s.clock(), s.loc)
}

// MarkNoShow is the admin's direct terminal marking; it bypasses the
// side-effect pipeline entirely.
func (s *Service) MarkNoShow(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status.IsTerminal() {
		metrics.TransitionsTotal.WithLabelValues(string(b.Status), string(domain.BookingNoShow), "rejected").Inc()
		return nil, ErrInvalidStatusTransition
	}

	ok, err := s.bookings.UpdateStatusIf(ctx, b.ID, b.Status, domain.BookingNoShow, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrentUpdate
	}
	metrics.TransitionsTotal.WithLabelValues(string(b.Status), string(domain.BookingNoShow), "committed").Inc()
	b.Status = domain.BookingNoShow
	return b, nil
}

// -------------------- transitions --------------------

func (s *Service) confirm(ctx context.Context, b *domain.Booking) (*Result, error) {
	if b.Status != domain.BookingPending {
		metrics.TransitionsTotal.WithLabelValues(string(b.Status), string(domain.BookingConfirmed), "rejected").Inc()
		return nil, ErrInvalidStatusTransition
	}

	ok, err := s.bookings.UpdateStatusIf(ctx, b.ID, domain.BookingPending, domain.BookingConfirmed, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrentUpdate
	}
	b.Status = domain.BookingConfirmed
	metrics.TransitionsTotal.WithLabelValues("pending", "confirmed", "committed").Inc()

	res := &Result{Booking: b}

	// Proforma first so the emails can carry its number. The issuance result
	// is threaded through directly, no re-read of the booking.
	if b.ProformaNumber != "" {
		res.addSkipped(StepProforma, fmt.Sprintf("Díjbekérő már létezik: %s", b.ProformaNumber))
	} else if s.invoicer == nil || !s.invoicer.Configured() {
		res.addSkipped(StepProforma, "Díjbekérő kihagyva (számlázás nincs beállítva)")
	} else {
		doc, err := s.invoicer.Issue(ctx, s.proformaRequest(b))
		if err != nil {
			s.softFail(res, StepProforma, fmt.Sprintf("Díjbekérő sikertelen: %v", err))
		} else {
			b.ProformaNumber = doc.Number
			b.ProformaURL = doc.URL
			s.recordFields(ctx, res, b.ID, map[string]any{
				"proforma_number": doc.Number,
				"proforma_url":    doc.URL,
			})
			res.addOK(StepProforma, fmt.Sprintf("Díjbekérő: %s", doc.Number))
		}
	}

	s.sendCustomerEmail(ctx, res, StepEmail, b, email.TemplateConfirmed, s.emailData(b, nil))
	if b.ProformaNumber != "" {
		s.sendCustomerEmail(ctx, res, StepEmailProforma, b, email.TemplateProforma, s.emailData(b, nil))
	}

	s.syncCalendar(ctx, res, b, calendar.ActionCreate)
	return res, nil
}

func (s *Service) markPaid(ctx context.Context, b *domain.Booking) (*Result, error) {
	if b.Status != domain.BookingConfirmed {
		metrics.TransitionsTotal.WithLabelValues(string(b.Status), string(domain.BookingPaid), "rejected").Inc()
		return nil, ErrInvalidStatusTransition
	}

	paidAt := s.clock()
	ok, err := s.bookings.UpdateStatusIf(ctx, b.ID, domain.BookingConfirmed, domain.BookingPaid, map[string]any{
		"paid_at": paidAt,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrentUpdate
	}
	b.Status = domain.BookingPaid
	b.PaidAt = &paidAt
	metrics.TransitionsTotal.WithLabelValues("confirmed", "paid", "committed").Inc()

	res := &Result{Booking: b}

	if b.InvoiceNumber != "" {
		res.addSkipped(StepInvoice, fmt.Sprintf("Számla már létezik: %s", b.InvoiceNumber))
	} else if s.invoicer == nil || !s.invoicer.Configured() {
		res.addSkipped(StepInvoice, "Számla kihagyva (számlázás nincs beállítva)")
	} else {
		doc, err := s.invoicer.Issue(ctx, s.invoiceRequest(b))
		if err != nil {
			s.softFail(res, StepInvoice, fmt.Sprintf("Számla sikertelen: %v", err))
		} else {
			b.InvoiceNumber = doc.Number
			b.InvoiceURL = doc.URL
			s.recordFields(ctx, res, b.ID, map[string]any{
				"invoice_number": doc.Number,
				"invoice_url":    doc.URL,
			})
			res.addOK(StepInvoice, fmt.Sprintf("Számla: %s", doc.Number))
		}
	}

	s.sendCustomerEmail(ctx, res, StepEmail, b, email.TemplatePaid, s.emailData(b, nil))
	s.syncCalendar(ctx, res, b, calendar.ActionUpdate)
	return res, nil
}

func (s *Service) complete(ctx context.Context, b *domain.Booking) (*Result, error) {
	if b.Status != domain.BookingPaid {
		metrics.TransitionsTotal.WithLabelValues(string(b.Status), string(domain.BookingCompleted), "rejected").Inc()
		return nil, ErrInvalidStatusTransition
	}

	ok, err := s.bookings.UpdateStatusIf(ctx, b.ID, domain.BookingPaid, domain.BookingCompleted, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrentUpdate
	}
	b.Status = domain.BookingCompleted
	metrics.TransitionsTotal.WithLabelValues("paid", "completed", "committed").Inc()

	res := &Result{Booking: b}
	s.sendCustomerEmail(ctx, res, StepEmail, b, email.TemplateCompleted, s.emailData(b, nil))
	s.syncCalendar(ctx, res, b, calendar.ActionUpdate)
	return res, nil
}

func (s *Service) cancel(ctx context.Context, b *domain.Booking, reason string) (*Result, error) {
	from := b.Status
	if !from.IsCancellable() {
		metrics.TransitionsTotal.WithLabelValues(string(from), "cancelled", "rejected").Inc()
		return nil, ErrNotCancellable
	}

	// Date guard: the booking day must still be ahead of the decision time
	// in the studio timezone. Past bookings are immutable here.
	decisionTime := s.clock()
	dayStart := now.With(b.BookingDate.In(s.loc)).BeginningOfDay()
	if !dayStart.After(decisionTime) {
		metrics.TransitionsTotal.WithLabelValues(string(from), "cancelled", "rejected").Inc()
		return nil, ErrBookingDatePassed
	}

	quote := s.QuoteCancellation(ctx, b)
	res := &Result{Booking: b, Quote: &quote}

	// Storno is a precondition: a paid booking cannot be cancelled without
	// reversing its invoice, so a storno failure aborts the whole operation.
	wasPaid := b.InvoiceNumber != ""
	if wasPaid {
		if s.invoicer == nil || !s.invoicer.Configured() {
			metrics.TransitionsTotal.WithLabelValues(string(from), "cancelled", "failed").Inc()
			return nil, ErrInvoicingNotConfigured
		}
		stornoNumber, err := s.invoicer.Reverse(ctx, b.InvoiceNumber)
		if err != nil {
			metrics.TransitionsTotal.WithLabelValues(string(from), "cancelled", "failed").Inc()
			return nil, fmt.Errorf("%w: %v", ErrStornoFailed, err)
		}
		b.StornoInvoiceNumber = stornoNumber
		res.addOK(StepStorno, fmt.Sprintf("Sztornó: %s", stornoNumber))
	}

	fields := map[string]any{
		"cancelled_at":        decisionTime,
		"cancellation_fee":    quote.Fee,
		"cancellation_reason": reason,
	}
	if wasPaid {
		fields["storno_invoice_number"] = b.StornoInvoiceNumber
	}
	ok, err := s.bookings.UpdateStatusIf(ctx, b.ID, from, domain.BookingCancelled, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrentUpdate
	}
	b.Status = domain.BookingCancelled
	b.CancelledAt = &decisionTime
	b.CancellationFee = quote.Fee
	b.CancellationReason = reason
	metrics.TransitionsTotal.WithLabelValues(string(from), "cancelled", "committed").Inc()

	// Fee invoice is best-effort from here on; the admin can regenerate it.
	if quote.Fee > 0 {
		if s.invoicer == nil || !s.invoicer.Configured() {
			res.addSkipped(StepFeeInvoice, "Lemondási díj számla kihagyva (számlázás nincs beállítva)")
		} else {
			doc, err := s.invoicer.Issue(ctx, s.feeInvoiceRequest(b, quote, wasPaid))
			if err != nil {
				s.softFail(res, StepFeeInvoice, fmt.Sprintf("Lemondási díj számla sikertelen: %v", err))
			} else {
				b.CancellationInvoiceNumber = doc.Number
				b.CancellationInvoiceURL = doc.URL
				s.recordFields(ctx, res, b.ID, map[string]any{
					"cancellation_invoice_number": doc.Number,
					"cancellation_invoice_url":    doc.URL,
				})
				res.addOK(StepFeeInvoice, fmt.Sprintf("Lemondási díj számla: %s", doc.Number))
			}
		}
	}

	data := s.emailData(b, &quote)
	data.WasPaid = wasPaid
	s.sendCustomerEmail(ctx, res, StepEmail, b, email.TemplateCancelled, data)
	s.sendAdminEmail(ctx, res, data)
	s.syncCalendar(ctx, res, b, calendar.ActionDelete)
	return res, nil
}

// RegenerateInvoice re-issues the document belonging to the current status,
// for when the original issuance step failed or the document went missing.
func (s *Service) RegenerateInvoice(ctx context.Context, bookingID int64) (*Result, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if s.invoicer == nil || !s.invoicer.Configured() {
		return nil, ErrInvoicingNotConfigured
	}

	res := &Result{Booking: b}
	switch b.Status {
	case domain.BookingConfirmed:
		doc, err := s.invoicer.Issue(ctx, s.proformaRequest(b))
		if err != nil {
			return nil, fmt.Errorf("regenerate proforma: %w", err)
		}
		b.ProformaNumber = doc.Number
		b.ProformaURL = doc.URL
		s.recordFields(ctx, res, b.ID, map[string]any{"proforma_number": doc.Number, "proforma_url": doc.URL})
		res.addOK(StepProforma, fmt.Sprintf("Díjbekérő: %s", doc.Number))
	case domain.BookingPaid, domain.BookingCompleted:
		doc, err := s.invoicer.Issue(ctx, s.invoiceRequest(b))
		if err != nil {
			return nil, fmt.Errorf("regenerate invoice: %w", err)
		}
		b.InvoiceNumber = doc.Number
		b.InvoiceURL = doc.URL
		s.recordFields(ctx, res, b.ID, map[string]any{"invoice_number": doc.Number, "invoice_url": doc.URL})
		res.addOK(StepInvoice, fmt.Sprintf("Számla: %s", doc.Number))
	case domain.BookingCancelled:
		if b.CancellationFee <= 0 {
			return nil, ErrNoDocumentForStatus
		}
		quote := cancelfee.Quote{Fee: b.CancellationFee}
		doc, err := s.invoicer.Issue(ctx, s.feeInvoiceRequest(b, quote, b.InvoiceNumber != ""))
		if err != nil {
			return nil, fmt.Errorf("regenerate cancellation fee invoice: %w", err)
		}
		b.CancellationInvoiceNumber = doc.Number
		b.CancellationInvoiceURL = doc.URL
		s.recordFields(ctx, res, b.ID, map[string]any{"cancellation_invoice_number": doc.Number, "cancellation_invoice_url": doc.URL})
		res.addOK(StepFeeInvoice, fmt.Sprintf("Lemondási díj számla: %s", doc.Number))
	default:
		return nil, ErrNoDocumentForStatus
	}
	return res, nil
}

// ResendEmail re-sends one lifecycle email for a booking.
func (s *Service) ResendEmail(ctx context.Context, bookingID int64, tpl email.Template) (*Result, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	res := &Result{Booking: b}
	data := s.emailData(b, nil)
	if tpl == email.TemplateCancelled || tpl == email.TemplateAdminCancelled {
		data.CancellationFee = b.CancellationFee
		data.Refund = b.TotalPrice - b.CancellationFee
		data.Reason = b.CancellationReason
		data.WasPaid = b.InvoiceNumber != ""
	}
	if tpl == email.TemplateAdminCancelled {
		s.sendAdminEmail(ctx, res, data)
	} else {
		s.sendCustomerEmail(ctx, res, StepEmail, b, tpl, data)
	}

	if len(res.Steps) == 1 && !res.Steps[0].OK {
		return res, fmt.Errorf("resend email: %s", res.Steps[0].Detail)
	}
	return res, nil
}

// -------------------- side-effect helpers --------------------

func (s *Service) softFail(res *Result, step, detail string) {
	s.loggerf("level=error msg=lifecycle side effect failed step=%s booking_id=%d detail=%q", step, res.Booking.ID, detail)
	metrics.SideEffectFailures.WithLabelValues(step).Inc()
	res.addFailed(step, detail)
}

func (s *Service) recordFields(ctx context.Context, res *Result, bookingID int64, fields map[string]any) {
	if err := s.bookings.UpdateFields(ctx, bookingID, fields); err != nil {
		s.loggerf("level=error msg=recording invoice fields failed booking_id=%d err=%v", bookingID, err)
	}
}

func (s *Service) sendCustomerEmail(ctx context.Context, res *Result, step string, b *domain.Booking, tpl email.Template, data email.Data) {
	if s.mailer == nil || !s.mailer.Configured() {
		res.addSkipped(step, "Email kihagyva (SMTP nincs beállítva)")
		return
	}
	to := ""
	if b.User != nil {
		to = b.User.Email
	}
	if err := s.mailer.Send(ctx, to, tpl, data); err != nil {
		s.softFail(res, step, fmt.Sprintf("Email sikertelen: %v", err))
		return
	}
	res.addOK(step, "Email elküldve")
}

func (s *Service) sendAdminEmail(ctx context.Context, res *Result, data email.Data) {
	if s.mailer == nil || !s.mailer.Configured() || s.mailer.AdminAddr() == "" {
		res.addSkipped(StepEmailAdmin, "Admin email kihagyva")
		return
	}
	if err := s.mailer.Send(ctx, s.mailer.AdminAddr(), email.TemplateAdminCancelled, data); err != nil {
		s.softFail(res, StepEmailAdmin, fmt.Sprintf("Admin email sikertelen: %v", err))
		return
	}
	res.addOK(StepEmailAdmin, "Admin értesítve")
}

func (s *Service) syncCalendar(ctx context.Context, res *Result, b *domain.Booking, action calendar.Action) {
	if s.calendar == nil {
		res.addSkipped(StepCalendar, "Naptár kihagyva")
		return
	}
	result, err := s.calendar.Sync(ctx, b, action)
	if err != nil {
		s.softFail(res, StepCalendar, fmt.Sprintf("Naptár szinkron sikertelen: %v", err))
		return
	}
	if result.Skipped {
		res.addSkipped(StepCalendar, "Naptár kihagyva")
		return
	}
	res.addOK(StepCalendar, "Naptár frissítve")
}

// -------------------- request builders --------------------

func (s *Service) buyer(b *domain.Booking) invoicing.Buyer {
	buyer := invoicing.Buyer{}
	if b.User != nil {
		buyer.Name = b.User.Name
		buyer.Email = b.User.Email
	}
	return buyer
}

func (s *Service) bookingItems(b *domain.Booking) []invoicing.LineItem {
	slotName := "Fotózás"
	if b.TimeSlot != nil {
		slotName = fmt.Sprintf("Fotózás – %s", b.TimeSlot.Name)
	}
	items := []invoicing.LineItem{{Description: slotName, Quantity: 1, UnitPrice: b.BasePrice}}
	if b.ExtrasPrice > 0 {
		items = append(items, invoicing.LineItem{Description: "Extrák", Quantity: 1, UnitPrice: b.ExtrasPrice})
	}
	if b.DiscountAmount > 0 {
		items = append(items, invoicing.LineItem{Description: "Kedvezmény", Quantity: 1, UnitPrice: -b.DiscountAmount})
	}
	return items
}

func (s *Service) proformaRequest(b *domain.Booking) invoicing.Request {
	return invoicing.Request{
		Kind:            invoicing.KindProforma,
		Buyer:           s.buyer(b),
		Items:           s.bookingItems(b),
		TransferDueDays: s.feeDueDays,
		Comment:         fmt.Sprintf("Foglalás #%d, %s", b.ID, b.BookingDate.Format("2006-01-02")),
	}
}

func (s *Service) invoiceRequest(b *domain.Booking) invoicing.Request {
	return invoicing.Request{
		Kind:     invoicing.KindInvoice,
		Buyer:    s.buyer(b),
		Items:    s.bookingItems(b),
		MarkPaid: true,
		Comment:  fmt.Sprintf("Foglalás #%d, %s", b.ID, b.BookingDate.Format("2006-01-02")),
	}
}

// feeInvoiceRequest bills the cancellation fee. For a paid booking the fee
// nets against the refund, so the document is marked paid; otherwise it is
// payable by transfer within the configured deadline.
func (s *Service) feeInvoiceRequest(b *domain.Booking, quote cancelfee.Quote, wasPaid bool) invoicing.Request {
	req := invoicing.Request{
		Kind:    invoicing.KindFee,
		Buyer:   s.buyer(b),
		Items:   []invoicing.LineItem{{Description: "Lemondási díj", Quantity: 1, UnitPrice: quote.Fee}},
		Comment: fmt.Sprintf("Foglalás #%d lemondása, %s", b.ID, b.BookingDate.Format("2006-01-02")),
	}
	if wasPaid {
		req.MarkPaid = true
	} else {
		req.TransferDueDays = s.feeDueDays
	}
	return req
}

func (s *Service) emailData(b *domain.Booking, quote *cancelfee.Quote) email.Data {
	data := email.Data{
		BookingID:      b.ID,
		BookingDate:    b.BookingDate.Format("2006-01-02"),
		TotalPrice:     b.TotalPrice,
		ProformaNumber: b.ProformaNumber,
		ProformaURL:    b.ProformaURL,
		InvoiceNumber:  b.InvoiceNumber,
		InvoiceURL:     b.InvoiceURL,
		Reason:         b.CancellationReason,
	}
	if b.User != nil {
		data.Name = b.User.Name
	}
	if b.TimeSlot != nil {
		data.SlotName = b.TimeSlot.Name
	}
	if quote != nil {
		data.CancellationFee = quote.Fee
		data.Refund = quote.Refund(b.TotalPrice)
	}
	return data
}
