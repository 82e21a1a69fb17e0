package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"spacebook/internal/domain"
)

type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id int64) (*domain.Notification, error)
	Save(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Notification, error)
	PurgeBefore(ctx context.Context, before time.Time, statuses ...domain.NotificationStatus) (int64, error)
}

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return translate(r.db.WithContext(ctx).Create(n).Error)
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	var n domain.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

// Save persists the delivery-state columns.
func (r *NotificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ?", n.ID).
		Updates(map[string]any{
			"status":        n.Status,
			"retry_count":   n.RetryCount,
			"error_message": n.ErrorMessage,
			"sent_at":       n.SentAt,
			"delivered_at":  n.DeliveredAt,
			"read_at":       n.ReadAt,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []domain.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, translate(err)
}

// PurgeBefore deletes notifications in the given statuses created before the
// cutoff and reports how many rows went.
func (r *NotificationRepository) PurgeBefore(ctx context.Context, before time.Time, statuses ...domain.NotificationStatus) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?", statuses, before).
		Delete(&domain.Notification{})
	return res.RowsAffected, translate(res.Error)
}
