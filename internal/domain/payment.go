package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentCompleted: {PaymentRefunded},
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BookingEffect is the booking status a payment status cascades into.
// ok is false when the payment status leaves the booking untouched.
func (s PaymentStatus) BookingEffect() (status BookingStatus, ok bool) {
	switch s {
	case PaymentCompleted:
		return BookingConfirmed, true
	case PaymentFailed, PaymentRefunded:
		return BookingCancelled, true
	}
	return "", false
}

type PaymentMethod string

const (
	MethodCard     PaymentMethod = "card"
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
	MethodWallet   PaymentMethod = "wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodCash, MethodTransfer, MethodWallet:
		return true
	}
	return false
}

// Online methods are settled by the gateway during CreatePayment.
func (m PaymentMethod) Online() bool {
	return m == MethodCard || m == MethodWallet
}

type Payment struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	BookingID     int64           `json:"booking_id" gorm:"not null;index"`
	UserID        int64           `json:"user_id" gorm:"not null;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency      string          `json:"currency" gorm:"type:varchar(3);not null"`
	Method        PaymentMethod   `json:"method" gorm:"type:varchar(16);not null"`
	TransactionID *string         `json:"transaction_id,omitempty" gorm:"size:255"`
	Status        PaymentStatus   `json:"status" gorm:"type:varchar(16);not null;index"`
	FailureReason string          `json:"failure_reason,omitempty" gorm:"type:text"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	RefundedAt    *time.Time      `json:"refunded_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Booking *Booking `json:"-" gorm:"foreignKey:BookingID"`
}

func (Payment) TableName() string { return "payments" }
