package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spacebook/internal/domain"
)

// BookingFilter scopes list queries. Zero fields do not filter; a non-nil
// empty LocationIDs matches nothing.
type BookingFilter struct {
	UserID      int64
	LocationIDs []int64
	SpaceID     int64
	Status      domain.BookingStatus
	Limit       int
	Offset      int
}

type BookingStore interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	ListActiveBySpaceDates(ctx context.Context, spaceID int64, dates []string) ([]domain.Booking, error)
	List(ctx context.Context, f BookingFilter) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return translate(r.db.WithContext(ctx).Create(b).Error)
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BookingRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BookingRepository) ListActiveBySpaceDates(ctx context.Context, spaceID int64, dates []string) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("space_id = ? AND date IN ? AND status IN ?", spaceID, dates, domain.ActiveBookingStatuses()).
		Order("date, start_time").
		Find(&out).Error
	return out, translate(err)
}

func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	if f.LocationIDs != nil && len(f.LocationIDs) == 0 {
		return []domain.Booking{}, nil
	}
	q := r.db.WithContext(ctx).Model(&domain.Booking{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.LocationIDs != nil {
		q = q.Where("location_id IN ?", f.LocationIDs)
	}
	if f.SpaceID != 0 {
		q = q.Where("space_id = ?", f.SpaceID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var out []domain.Booking
	err := q.Order("date DESC, start_time DESC, id DESC").Find(&out).Error
	return out, translate(err)
}

// UpdateStatus writes the status and stamps cancelled_at / completed_at when relevant.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, at time.Time) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": at,
	}
	switch status {
	case domain.BookingCancelled:
		updates["cancelled_at"] = at
	case domain.BookingCompleted:
		updates["completed_at"] = at
	}
	res := r.db.WithContext(ctx).Table("bookings").Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Booking{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
