// Package admin reports operational counters across bookings, payments and
// notifications.
package admin

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"spacebook/internal/domain"
	"spacebook/internal/pkg/apperror"
)

type StatisticsResponse struct {
	TotalUsers          int64            `json:"total_users"`
	TotalSpaces         int64            `json:"total_spaces"`
	BookingsByStatus    map[string]int64 `json:"bookings_by_status"`
	TodayBookings       int64            `json:"today_bookings"`
	PendingPayments     int64            `json:"pending_payments"`
	Revenue             decimal.Decimal  `json:"revenue"`
	FailedNotifications int64            `json:"failed_notifications"`
}

type dbProvider interface {
	DB() *gorm.DB
}

type Service struct {
	store dbProvider
	now   func() time.Time
}

func NewService(store dbProvider) *Service {
	return &Service{store: store, now: time.Now}
}

// GetStatistics counts rows directly; it is read-only and tolerates slight
// skew between the individual counts.
func (s *Service) GetStatistics(ctx context.Context) (*StatisticsResponse, error) {
	db := s.store.DB().WithContext(ctx)
	out := &StatisticsResponse{BookingsByStatus: map[string]int64{}}

	if err := db.Model(&domain.User{}).Count(&out.TotalUsers).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	if err := db.Model(&domain.Space{}).Where("is_active = ?", true).Count(&out.TotalSpaces).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	var rows []struct {
		Status string
		N      int64
	}
	if err := db.Model(&domain.Booking{}).Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	for _, r := range rows {
		out.BookingsByStatus[r.Status] = r.N
	}

	today := s.now().Format("2006-01-02")
	if err := db.Model(&domain.Booking{}).
		Where("date = ? AND status IN ?", today, domain.ActiveBookingStatuses()).
		Count(&out.TodayBookings).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	if err := db.Model(&domain.Payment{}).Where("status = ?", domain.PaymentPending).Count(&out.PendingPayments).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	var revenue decimal.NullDecimal
	if err := db.Model(&domain.Payment{}).
		Select("SUM(amount)").
		Where("status = ?", domain.PaymentCompleted).
		Row().Scan(&revenue); err != nil {
		return nil, apperror.Internal(err)
	}
	out.Revenue = revenue.Decimal.Round(2)

	if err := db.Model(&domain.Notification{}).Where("status = ?", domain.NotificationFailed).Count(&out.FailedNotifications).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}
