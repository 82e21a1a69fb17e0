package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spacebook/internal/domain"
)

type SpaceStore interface {
	CreateLocation(ctx context.Context, l *domain.Location) error
	Create(ctx context.Context, s *domain.Space) error
	GetByID(ctx context.Context, id int64) (*domain.Space, error)
	// GetForUpdate loads the space and holds a row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*domain.Space, error)
	LocationIDsManagedBy(ctx context.Context, managerID int64) ([]int64, error)
	GetLocation(ctx context.Context, id int64) (*domain.Location, error)
	ListByLocation(ctx context.Context, locationID int64, activeOnly bool) ([]domain.Space, error)
}

type SpaceRepository struct {
	db *gorm.DB
}

func NewSpaceRepository(db *gorm.DB) *SpaceRepository {
	return &SpaceRepository{db: db}
}

func (r *SpaceRepository) CreateLocation(ctx context.Context, l *domain.Location) error {
	return translate(r.db.WithContext(ctx).Create(l).Error)
}

func (r *SpaceRepository) Create(ctx context.Context, s *domain.Space) error {
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

func (r *SpaceRepository) GetByID(ctx context.Context, id int64) (*domain.Space, error) {
	var s domain.Space
	if err := r.db.WithContext(ctx).Preload("Location").First(&s, id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *SpaceRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Space, error) {
	var s domain.Space
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, id).Error
	if err != nil {
		return nil, translate(err)
	}
	var loc domain.Location
	if err := r.db.WithContext(ctx).First(&loc, s.LocationID).Error; err != nil {
		return nil, translate(err)
	}
	s.Location = &loc
	return &s, nil
}

func (r *SpaceRepository) LocationIDsManagedBy(ctx context.Context, managerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&domain.Location{}).
		Where("manager_id = ?", managerID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, translate(err)
}

func (r *SpaceRepository) GetLocation(ctx context.Context, id int64) (*domain.Location, error) {
	var l domain.Location
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *SpaceRepository) ListByLocation(ctx context.Context, locationID int64, activeOnly bool) ([]domain.Space, error) {
	q := r.db.WithContext(ctx).Where("location_id = ?", locationID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []domain.Space
	err := q.Order("id").Find(&out).Error
	return out, translate(err)
}
