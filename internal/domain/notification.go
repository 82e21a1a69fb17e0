package domain

import "time"

type NotificationType string

const (
	NotificationEmail NotificationType = "email"
	NotificationPush  NotificationType = "push"
	NotificationSMS   NotificationType = "sms"
)

func (t NotificationType) Valid() bool {
	return t == NotificationEmail || t == NotificationPush || t == NotificationSMS
}

// Channels are semantic categories, independent of the delivery type.
const (
	ChannelBookingCreated      = "booking_created"
	ChannelBookingConfirmation = "booking_confirmation"
	ChannelBookingCancelled    = "booking_cancelled"
	ChannelBookingCompleted    = "booking_completed"
	ChannelPaymentReceipt      = "payment_receipt"
	ChannelPaymentFailed       = "payment_failed"
	ChannelPaymentRefunded     = "payment_refunded"
)

type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationSent      NotificationStatus = "sent"
	NotificationDelivered NotificationStatus = "delivered"
	NotificationRead      NotificationStatus = "read"
	NotificationFailed    NotificationStatus = "failed"
)

var notificationTransitions = map[NotificationStatus][]NotificationStatus{
	NotificationPending:   {NotificationSent, NotificationFailed},
	NotificationSent:      {NotificationDelivered, NotificationRead},
	NotificationDelivered: {NotificationRead},
}

func (s NotificationStatus) CanTransitionTo(next NotificationStatus) bool {
	for _, allowed := range notificationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Notification struct {
	ID           int64              `json:"id" gorm:"primaryKey"`
	UserID       int64              `json:"user_id" gorm:"not null;index"`
	Type         NotificationType   `json:"type" gorm:"type:varchar(8);not null"`
	Channel      string             `json:"channel" gorm:"type:varchar(64);not null"`
	Template     string             `json:"template" gorm:"type:varchar(64)"`
	Recipient    string             `json:"recipient" gorm:"size:512"`
	Subject      string             `json:"subject,omitempty" gorm:"size:255"`
	Body         string             `json:"body,omitempty" gorm:"type:text"`
	Data         map[string]any     `json:"data,omitempty" gorm:"serializer:json"`
	Status       NotificationStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	RetryCount   int                `json:"retry_count" gorm:"not null;default:0"`
	BookingID    *int64             `json:"booking_id,omitempty" gorm:"index"`
	PaymentID    *int64             `json:"payment_id,omitempty" gorm:"index"`
	ErrorMessage string             `json:"error_message,omitempty" gorm:"type:text"`
	SentAt       *time.Time         `json:"sent_at,omitempty"`
	DeliveredAt  *time.Time         `json:"delivered_at,omitempty"`
	ReadAt       *time.Time         `json:"read_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func (Notification) TableName() string { return "notifications" }
