package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Active bookings take part in overlap checks.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ActiveBookingStatuses lists the statuses that block a slot.
func ActiveBookingStatuses() []BookingStatus {
	return []BookingStatus{BookingPending, BookingConfirmed}
}

type Booking struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	UserID      int64           `json:"user_id" gorm:"not null;index"`
	SpaceID     int64           `json:"space_id" gorm:"not null;index:idx_bookings_space_date,priority:1"`
	LocationID  int64           `json:"location_id" gorm:"not null;index"`
	Date        string          `json:"date" gorm:"type:varchar(10);not null;index:idx_bookings_space_date,priority:2"`
	StartTime   string          `json:"start_time" gorm:"type:varchar(5);not null"`
	EndTime     string          `json:"end_time" gorm:"type:varchar(5);not null"`
	TotalHours  decimal.Decimal `json:"total_hours" gorm:"type:decimal(6,2);not null"`
	TotalPrice  decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2);not null"`
	Status      BookingStatus   `json:"status" gorm:"type:varchar(16);not null;index"`
	Notes       string          `json:"notes,omitempty" gorm:"type:text"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	User  *User  `json:"-" gorm:"foreignKey:UserID"`
	Space *Space `json:"-" gorm:"foreignKey:SpaceID"`
}

func (Booking) TableName() string { return "bookings" }
