package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"studiobooking/internal/domain"
)

// CatalogRepository covers the admin-managed reference tables: time slots,
// extras, coupons and opening hours.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// -------------------- Time slots --------------------

func (r *CatalogRepository) ListTimeSlots(ctx context.Context, activeOnly bool) ([]domain.TimeSlot, error) {
	q := r.db.WithContext(ctx).Order("start_time ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var slots []domain.TimeSlot
	if tx := q.Find(&slots); tx.Error != nil {
		return nil, tx.Error
	}
	return slots, nil
}

func (r *CatalogRepository) GetTimeSlot(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	var slot domain.TimeSlot
	if tx := r.db.WithContext(ctx).First(&slot, id); tx.Error != nil {
		return nil, tx.Error
	}
	return &slot, nil
}

func (r *CatalogRepository) SaveTimeSlot(ctx context.Context, slot *domain.TimeSlot) error {
	return r.db.WithContext(ctx).Save(slot).Error
}

func (r *CatalogRepository) DeleteTimeSlot(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.TimeSlot{}, id).Error
}

// -------------------- Extras --------------------

func (r *CatalogRepository) ListExtras(ctx context.Context, activeOnly bool) ([]domain.Extra, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var extras []domain.Extra
	if tx := q.Find(&extras); tx.Error != nil {
		return nil, tx.Error
	}
	return extras, nil
}

func (r *CatalogRepository) GetExtrasByIDs(ctx context.Context, ids []int64) ([]domain.Extra, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var extras []domain.Extra
	tx := r.db.WithContext(ctx).Where("id IN ? AND active = ?", ids, true).Find(&extras)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return extras, nil
}

func (r *CatalogRepository) SaveExtra(ctx context.Context, extra *domain.Extra) error {
	return r.db.WithContext(ctx).Save(extra).Error
}

func (r *CatalogRepository) DeleteExtra(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Extra{}, id).Error
}

// -------------------- Coupons --------------------

func (r *CatalogRepository) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	var coupons []domain.Coupon
	if tx := r.db.WithContext(ctx).Order("id ASC").Find(&coupons); tx.Error != nil {
		return nil, tx.Error
	}
	return coupons, nil
}

// GetValidCoupon resolves a code to an active, unexpired coupon; gorm's
// ErrRecordNotFound doubles as the "invalid code" signal.
func (r *CatalogRepository) GetValidCoupon(ctx context.Context, code string, at time.Time) (*domain.Coupon, error) {
	var coupon domain.Coupon
	tx := r.db.WithContext(ctx).
		Where("code = ? AND active = ?", code, true).
		First(&coupon)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if coupon.ValidUntil != nil && coupon.ValidUntil.Before(at) {
		return nil, gorm.ErrRecordNotFound
	}
	return &coupon, nil
}

func (r *CatalogRepository) SaveCoupon(ctx context.Context, coupon *domain.Coupon) error {
	return r.db.WithContext(ctx).Save(coupon).Error
}

func (r *CatalogRepository) DeleteCoupon(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Coupon{}, id).Error
}

// -------------------- Opening hours --------------------

func (r *CatalogRepository) ListOpeningHours(ctx context.Context) ([]domain.OpeningHours, error) {
	var hours []domain.OpeningHours
	if tx := r.db.WithContext(ctx).Order("day_of_week ASC").Find(&hours); tx.Error != nil {
		return nil, tx.Error
	}
	return hours, nil
}

func (r *CatalogRepository) UpsertOpeningHours(ctx context.Context, h *domain.OpeningHours) error {
	var existing domain.OpeningHours
	tx := r.db.WithContext(ctx).Where("day_of_week = ?", h.DayOfWeek).First(&existing)
	if tx.Error == nil {
		h.ID = existing.ID
	}
	return r.db.WithContext(ctx).Save(h).Error
}
