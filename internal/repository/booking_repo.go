package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"studiobooking/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	UserID      int64     `gorm:"column:user_id"`
	BookingDate time.Time `gorm:"column:booking_date"`
	TimeSlotID  int64     `gorm:"column:time_slot_id"`

	BasePrice      int `gorm:"column:base_price"`
	ExtrasPrice    int `gorm:"column:extras_price"`
	DiscountAmount int `gorm:"column:discount_amount"`
	TotalPrice     int `gorm:"column:total_price"`

	Status string `gorm:"column:status"`

	ProformaNumber            *string `gorm:"column:proforma_number"`
	ProformaURL               *string `gorm:"column:proforma_url"`
	InvoiceNumber             *string `gorm:"column:invoice_number"`
	InvoiceURL                *string `gorm:"column:invoice_url"`
	StornoInvoiceNumber       *string `gorm:"column:storno_invoice_number"`
	CancellationInvoiceNumber *string `gorm:"column:cancellation_invoice_number"`
	CancellationInvoiceURL    *string `gorm:"column:cancellation_invoice_url"`

	CancellationFee    int        `gorm:"column:cancellation_fee"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	PaidAt             *time.Time `gorm:"column:paid_at"`

	CouponCode *string `gorm:"column:coupon_code"`
	Notes      *string `gorm:"column:notes"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func strOrEmpty(p *string) string {
	if p != nil {
		return *p
	}
	return ""
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:          m.ID,
		UserID:      m.UserID,
		BookingDate: m.BookingDate,
		TimeSlotID:  m.TimeSlotID,

		BasePrice:      m.BasePrice,
		ExtrasPrice:    m.ExtrasPrice,
		DiscountAmount: m.DiscountAmount,
		TotalPrice:     m.TotalPrice,

		Status: domain.BookingStatus(m.Status),

		ProformaNumber:            strOrEmpty(m.ProformaNumber),
		ProformaURL:               strOrEmpty(m.ProformaURL),
		InvoiceNumber:             strOrEmpty(m.InvoiceNumber),
		InvoiceURL:                strOrEmpty(m.InvoiceURL),
		StornoInvoiceNumber:       strOrEmpty(m.StornoInvoiceNumber),
		CancellationInvoiceNumber: strOrEmpty(m.CancellationInvoiceNumber),
		CancellationInvoiceURL:    strOrEmpty(m.CancellationInvoiceURL),

		CancellationFee:    m.CancellationFee,
		CancellationReason: strOrEmpty(m.CancellationReason),
		CancelledAt:        m.CancelledAt,
		PaidAt:             m.PaidAt,

		CouponCode: strOrEmpty(m.CouponCode),
		Notes:      strOrEmpty(m.Notes),

		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:          b.ID,
		UserID:      b.UserID,
		BookingDate: b.BookingDate,
		TimeSlotID:  b.TimeSlotID,

		BasePrice:      b.BasePrice,
		ExtrasPrice:    b.ExtrasPrice,
		DiscountAmount: b.DiscountAmount,
		TotalPrice:     b.TotalPrice,

		Status: string(b.Status),

		ProformaNumber:            strOrNil(b.ProformaNumber),
		ProformaURL:               strOrNil(b.ProformaURL),
		InvoiceNumber:             strOrNil(b.InvoiceNumber),
		InvoiceURL:                strOrNil(b.InvoiceURL),
		StornoInvoiceNumber:       strOrNil(b.StornoInvoiceNumber),
		CancellationInvoiceNumber: strOrNil(b.CancellationInvoiceNumber),
		CancellationInvoiceURL:    strOrNil(b.CancellationInvoiceURL),

		CancellationFee:    b.CancellationFee,
		CancellationReason: strOrNil(b.CancellationReason),
		CancelledAt:        b.CancelledAt,
		PaidAt:             b.PaidAt,

		CouponCode: strOrNil(b.CouponCode),
		Notes:      strOrNil(b.Notes),

		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

// GetByID loads the booking together with its user and time slot; the
// lifecycle needs the buyer email and slot name for invoices and mails.
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	if tx := r.db.WithContext(ctx).First(&m, id); tx.Error != nil {
		return nil, tx.Error
	}
	b := toDomainBooking(m)

	var u domain.User
	if tx := r.db.WithContext(ctx).First(&u, b.UserID); tx.Error == nil {
		b.User = &u
	}
	var slot domain.TimeSlot
	if tx := r.db.WithContext(ctx).First(&slot, b.TimeSlotID); tx.Error == nil {
		b.TimeSlot = &slot
	}
	return b, nil
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	var models []bookingModel
	tx := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("booking_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Booking, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

type ListFilter struct {
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

func (r *BookingRepository) List(ctx context.Context, f ListFilter) ([]domain.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&bookingModel{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.DateFrom != nil {
		q = q.Where("booking_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("booking_date < ?", *f.DateTo)
	}

	var total int64
	if tx := q.Count(&total); tx.Error != nil {
		return nil, 0, tx.Error
	}

	var models []bookingModel
	tx := q.Order("booking_date ASC, id ASC").Limit(f.Limit).Offset(f.Offset).Find(&models)
	if tx.Error != nil {
		return nil, 0, tx.Error
	}

	out := make([]domain.Booking, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainBooking(m))
	}
	return out, total, nil
}

// CountActiveForSlot counts live bookings on a given date and slot. The
// partial unique index is the real guard; this is the pre-check that gives
// customers a friendly error instead of a constraint violation.
func (r *BookingRepository) CountActiveForSlot(ctx context.Context, date time.Time, slotID int64) (int64, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("booking_date = ? AND time_slot_id = ? AND status NOT IN ('cancelled', 'no_show')", date, slotID).
		Count(&cnt)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return cnt, nil
}

// UpdateStatusIf flips the status only when the row still carries the
// expected current status, together with any extra fields in the same
// UPDATE. Returns false when another transition won the race.
func (r *BookingRepository) UpdateStatusIf(ctx context.Context, id int64, from, to domain.BookingStatus, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": string(to), "updated_at": time.Now()}
	for k, v := range fields {
		updates[k] = v
	}

	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

// UpdateFields records side-effect results (invoice numbers, URLs) after the
// transition has already committed.
func (r *BookingRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ?", id).
		Updates(fields).Error
}
