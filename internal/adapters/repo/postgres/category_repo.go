package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerline/brandboard/internal/domain"
)

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) GetOrCreate(ctx context.Context, name string) (*domain.Category, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c = domain.Category{ID: uuid.New(), Name: name}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}
