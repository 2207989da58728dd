package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ledgerline/brandboard/internal/domain"
)

type SeasonalityRepo struct{ db *gorm.DB }

func NewSeasonalityRepo(db *gorm.DB) *SeasonalityRepo { return &SeasonalityRepo{db: db} }

func (r *SeasonalityRepo) List(ctx context.Context) ([]domain.Seasonality, error) {
	var curves []domain.Seasonality
	if err := r.db.WithContext(ctx).Order("name asc").Find(&curves).Error; err != nil {
		return nil, err
	}
	return curves, nil
}

func (r *SeasonalityRepo) FindByName(ctx context.Context, name string) (*domain.Seasonality, error) {
	var s domain.Seasonality
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SeasonalityRepo) Save(ctx context.Context, s *domain.Seasonality) error {
	return r.db.WithContext(ctx).Save(s).Error
}
