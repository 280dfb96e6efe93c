package repository

import (
	"context"

	"gorm.io/gorm"

	"studiobooking/internal/domain"
)

type PolicyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// GetRules returns the configured cancellation tiers, or an empty slice when
// none are configured (callers fall back to the default policy).
func (r *PolicyRepository) GetRules(ctx context.Context) ([]domain.CancellationRule, error) {
	var rules []domain.CancellationRule
	tx := r.db.WithContext(ctx).Order("days_before DESC").Find(&rules)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return rules, nil
}

// ReplaceRules swaps the whole policy in one transaction; partial policies
// are worse than the previous full one.
func (r *PolicyRepository) ReplaceRules(ctx context.Context, rules []domain.CancellationRule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.CancellationRule{}).Error; err != nil {
			return err
		}
		if len(rules) == 0 {
			return nil
		}
		for i := range rules {
			rules[i].ID = 0
		}
		return tx.Create(&rules).Error
	})
}
