package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spacebook/internal/domain"
)

type PaymentFilter struct {
	UserID      int64
	LocationIDs []int64
	BookingID   int64
}

type PaymentStore interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Payment, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error)
	List(ctx context.Context, f PaymentFilter) ([]domain.Payment, error)
	Save(ctx context.Context, p *domain.Payment) error
}

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PaymentRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("id").Find(&out).Error
	return out, translate(err)
}

// List joins through bookings so managers see payments for their locations.
func (r *PaymentRepository) List(ctx context.Context, f PaymentFilter) ([]domain.Payment, error) {
	if f.LocationIDs != nil && len(f.LocationIDs) == 0 {
		return []domain.Payment{}, nil
	}
	q := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Joins("JOIN bookings ON bookings.id = payments.booking_id")
	if f.UserID != 0 {
		q = q.Where("payments.user_id = ?", f.UserID)
	}
	if f.LocationIDs != nil {
		q = q.Where("bookings.location_id IN ?", f.LocationIDs)
	}
	if f.BookingID != 0 {
		q = q.Where("payments.booking_id = ?", f.BookingID)
	}

	var out []domain.Payment
	err := q.Order("payments.id DESC").Find(&out).Error
	return out, translate(err)
}

func (r *PaymentRepository) Save(ctx context.Context, p *domain.Payment) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"status":         p.Status,
			"transaction_id": p.TransactionID,
			"failure_reason": p.FailureReason,
			"paid_at":        p.PaidAt,
			"refunded_at":    p.RefundedAt,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
