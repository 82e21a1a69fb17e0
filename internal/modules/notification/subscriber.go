package notification

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"spacebook/internal/domain"
	"spacebook/internal/events"
	"spacebook/internal/repository"
)

type route struct {
	channel string
	types   []domain.NotificationType
}

var routes = map[string]route{
	events.BookingCreated:   {domain.ChannelBookingCreated, []domain.NotificationType{domain.NotificationEmail, domain.NotificationPush}},
	events.BookingConfirmed: {domain.ChannelBookingConfirmation, []domain.NotificationType{domain.NotificationEmail, domain.NotificationPush, domain.NotificationSMS}},
	events.BookingCancelled: {domain.ChannelBookingCancelled, []domain.NotificationType{domain.NotificationEmail, domain.NotificationPush, domain.NotificationSMS}},
	events.BookingCompleted: {domain.ChannelBookingCompleted, []domain.NotificationType{domain.NotificationEmail}},
	events.PaymentCompleted: {domain.ChannelPaymentReceipt, []domain.NotificationType{domain.NotificationEmail}},
	events.PaymentFailed:    {domain.ChannelPaymentFailed, []domain.NotificationType{domain.NotificationEmail, domain.NotificationPush}},
	events.PaymentRefunded:  {domain.ChannelPaymentRefunded, []domain.NotificationType{domain.NotificationEmail}},
}

// Subscriber turns booking and payment events into notifications for the
// booking owner.
type Subscriber struct {
	dispatcher *Dispatcher
	users      repository.UserStore
	log        *zap.Logger
}

func NewSubscriber(d *Dispatcher, users repository.UserStore, log *zap.Logger) *Subscriber {
	if log == nil {
		log = zap.NewNop()
	}
	return &Subscriber{dispatcher: d, users: users, log: log}
}

// Handle satisfies events.Handler. Delivery failures are recorded on the
// notification rows and never returned, so transports do not redeliver.
func (s *Subscriber) Handle(ctx context.Context, e events.Event) error {
	rt, ok := routes[e.Name]
	if !ok {
		return nil
	}
	var p events.BookingPayload
	if err := e.Decode(&p); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Name, err)
	}

	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("notification recipient missing", zap.String("event", e.Name), zap.Int64("user_id", p.UserID))
			return nil
		}
		return fmt.Errorf("load recipient %d: %w", p.UserID, err)
	}

	data := templateData(u, p)
	bookingID := p.BookingID
	var paymentID *int64
	if p.PaymentID != 0 {
		id := p.PaymentID
		paymentID = &id
	}

	for _, t := range rt.types {
		recipient := addressFor(u, t)
		if recipient == "" && t != domain.NotificationEmail {
			continue
		}
		_, err := s.dispatcher.Notify(ctx, NotifyInput{
			Type:      t,
			Channel:   rt.channel,
			UserID:    u.ID,
			Recipient: recipient,
			Template:  rt.channel,
			Data:      data,
			BookingID: &bookingID,
			PaymentID: paymentID,
		})
		if err != nil {
			s.log.Error("notify failed", zap.String("event", e.Name), zap.String("type", string(t)), zap.Error(err))
		}
	}
	return nil
}

func addressFor(u *domain.User, t domain.NotificationType) string {
	switch t {
	case domain.NotificationEmail:
		return u.Email
	case domain.NotificationPush:
		return u.FCMToken
	case domain.NotificationSMS:
		return u.Phone
	}
	return ""
}

func templateData(u *domain.User, p events.BookingPayload) map[string]any {
	name := u.Name
	if name == "" {
		name = u.Email
	}
	return map[string]any{
		"name":        name,
		"booking_id":  p.BookingID,
		"payment_id":  p.PaymentID,
		"space_id":    p.SpaceID,
		"date":        p.Date,
		"start_time":  p.StartTime,
		"end_time":    p.EndTime,
		"status":      p.Status,
		"total_price": p.TotalPrice,
		"amount":      p.Amount,
		"reason":      p.Reason,
	}
}
