package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"spacebook/internal/domain"
	"spacebook/internal/pkg/apperror"
	"spacebook/internal/policy"
	"spacebook/internal/repository"
)

// Pusher forwards sent notifications to live client connections.
type Pusher interface {
	Push(userID int64, v any) int
}

type NotifyInput struct {
	Type      domain.NotificationType
	Channel   string
	UserID    int64
	Recipient string
	Template  string
	Data      map[string]any
	BookingID *int64
	PaymentID *int64
}

// Dispatcher persists a notification, attempts delivery once and records the
// outcome. Retries belong to whoever re-drives failed rows.
type Dispatcher struct {
	store     repository.UnitOfWork
	senders   map[domain.NotificationType]Sender
	templates *Templates
	pusher    Pusher
	log       *zap.Logger
	now       func() time.Time
}

func NewDispatcher(store repository.UnitOfWork, templates *Templates, log *zap.Logger) *Dispatcher {
	if templates == nil {
		templates = DefaultTemplates()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		store:     store,
		senders:   make(map[domain.NotificationType]Sender),
		templates: templates,
		log:       log,
		now:       time.Now,
	}
}

// Register installs the sender for t, replacing any previous one.
func (d *Dispatcher) Register(t domain.NotificationType, s Sender) *Dispatcher {
	d.senders[t] = s
	return d
}

func (d *Dispatcher) WithPusher(p Pusher) *Dispatcher {
	d.pusher = p
	return d
}

// Notify returns the stored row in its final state. A delivery failure is
// recorded on the row, not returned; the error reports storage failures only.
func (d *Dispatcher) Notify(ctx context.Context, in NotifyInput) (*domain.Notification, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("unknown notification type %q", in.Type)
	}
	tmpl := in.Template
	if tmpl == "" {
		tmpl = in.Channel
	}

	n := &domain.Notification{
		UserID:    in.UserID,
		Type:      in.Type,
		Channel:   in.Channel,
		Template:  tmpl,
		Recipient: in.Recipient,
		Data:      in.Data,
		Status:    domain.NotificationPending,
		BookingID: in.BookingID,
		PaymentID: in.PaymentID,
	}
	r := d.store.Repos()
	if err := r.Notifications.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("persist notification: %w", err)
	}

	deliveryErr := d.deliver(ctx, n)
	if deliveryErr != nil {
		n.Status = domain.NotificationFailed
		n.ErrorMessage = deliveryErr.Error()
		n.RetryCount++
	} else {
		sentAt := d.now()
		n.Status = domain.NotificationSent
		n.SentAt = &sentAt
	}
	if err := r.Notifications.Save(context.WithoutCancel(ctx), n); err != nil {
		return n, fmt.Errorf("record delivery outcome: %w", err)
	}

	if deliveryErr != nil {
		d.log.Warn("notification delivery failed",
			zap.Int64("notification_id", n.ID),
			zap.String("type", string(n.Type)),
			zap.String("channel", n.Channel),
			zap.Error(deliveryErr))
		return n, nil
	}
	if d.pusher != nil {
		d.pusher.Push(n.UserID, n)
	}
	return n, nil
}

func (d *Dispatcher) deliver(ctx context.Context, n *domain.Notification) error {
	subject, body, err := d.templates.Render(n.Template, n.Data)
	if err != nil {
		return err
	}
	n.Subject, n.Body = subject, body

	sender, ok := d.senders[n.Type]
	if !ok || sender == nil {
		return errors.New("no sender for type " + string(n.Type))
	}
	return sender.Send(ctx, Message{
		Recipient: n.Recipient,
		Subject:   subject,
		Body:      body,
		Data:      stringify(n.Data),
	})
}

func (d *Dispatcher) List(ctx context.Context, subj policy.Subject, limit int) ([]domain.Notification, error) {
	if subj.UserID == 0 {
		return nil, apperror.Unauthorized("authentication required")
	}
	out, err := d.store.Repos().Notifications.ListByUser(ctx, subj.UserID, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

func (d *Dispatcher) MarkDelivered(ctx context.Context, subj policy.Subject, id int64) (*domain.Notification, error) {
	return d.UpdateStatus(ctx, subj, id, string(domain.NotificationDelivered))
}

func (d *Dispatcher) MarkRead(ctx context.Context, subj policy.Subject, id int64) (*domain.Notification, error) {
	return d.UpdateStatus(ctx, subj, id, string(domain.NotificationRead))
}

// UpdateStatus records recipient-side progress: sent -> delivered -> read.
func (d *Dispatcher) UpdateStatus(ctx context.Context, subj policy.Subject, id int64, status string) (*domain.Notification, error) {
	next := domain.NotificationStatus(strings.ToLower(strings.TrimSpace(status)))
	if next != domain.NotificationDelivered && next != domain.NotificationRead {
		return nil, ErrInvalidStatus
	}

	var out *domain.Notification
	err := d.store.WithinTx(ctx, func(r repository.Repositories) error {
		n, err := r.Notifications.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotificationNotFound
			}
			return err
		}
		if n.UserID != subj.UserID && subj.Role != domain.RoleAdmin {
			return apperror.Forbidden("you are not allowed to update this notification")
		}
		if n.Status == next {
			out = n
			return nil
		}
		if !n.Status.CanTransitionTo(next) {
			return ErrInvalidTransition.WithMessage("cannot change notification status from " + string(n.Status) + " to " + string(next))
		}

		now := d.now()
		n.Status = next
		switch next {
		case domain.NotificationDelivered:
			n.DeliveredAt = &now
		case domain.NotificationRead:
			n.ReadAt = &now
		}
		if err := r.Notifications.Save(ctx, n); err != nil {
			return err
		}
		out = n
		return nil
	})
	if err != nil {
		return nil, apperror.From(err)
	}
	return out, nil
}

func stringify(data map[string]any) map[string]string {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]string, len(data))
	for k, v := range data {
		if v == nil {
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
