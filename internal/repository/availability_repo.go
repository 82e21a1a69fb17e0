package repository

import (
	"context"

	"gorm.io/gorm"

	"spacebook/internal/domain"
)

type AvailabilityStore interface {
	Create(ctx context.Context, b *domain.AvailabilityBlock) error
	GetByID(ctx context.Context, id int64) (*domain.AvailabilityBlock, error)
	Update(ctx context.Context, b *domain.AvailabilityBlock) error
	Delete(ctx context.Context, id int64) error
	ListBySpaceDate(ctx context.Context, spaceID int64, date string) ([]domain.AvailabilityBlock, error)
}

type AvailabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) Create(ctx context.Context, b *domain.AvailabilityBlock) error {
	return translate(r.db.WithContext(ctx).Create(b).Error)
}

func (r *AvailabilityRepository) GetByID(ctx context.Context, id int64) (*domain.AvailabilityBlock, error) {
	var b domain.AvailabilityBlock
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *AvailabilityRepository) Update(ctx context.Context, b *domain.AvailabilityBlock) error {
	res := r.db.WithContext(ctx).
		Model(&domain.AvailabilityBlock{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{
			"date":         b.Date,
			"start_time":   b.StartTime,
			"end_time":     b.EndTime,
			"is_available": b.IsAvailable,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AvailabilityRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.AvailabilityBlock{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AvailabilityRepository) ListBySpaceDate(ctx context.Context, spaceID int64, date string) ([]domain.AvailabilityBlock, error) {
	var out []domain.AvailabilityBlock
	err := r.db.WithContext(ctx).
		Where("space_id = ? AND date = ?", spaceID, date).
		Order("start_time").
		Find(&out).Error
	return out, translate(err)
}
