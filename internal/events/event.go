// Package events carries domain events from the booking and settlement
// services to their consumers after the originating transaction commits.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Routing keys.
const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	BookingCompleted = "booking.completed"
	PaymentCompleted = "payment.completed"
	PaymentFailed    = "payment.failed"
	PaymentRefunded  = "payment.refunded"
)

// All lists every routing key, used for queue bindings.
var All = []string{
	BookingCreated, BookingConfirmed, BookingCancelled, BookingCompleted,
	PaymentCompleted, PaymentFailed, PaymentRefunded,
}

type Event struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	AggregateID int64           `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload"`
}

// BookingPayload is carried by booking.* and payment.* events.
type BookingPayload struct {
	BookingID  int64  `json:"booking_id"`
	PaymentID  int64  `json:"payment_id,omitempty"`
	UserID     int64  `json:"user_id"`
	SpaceID    int64  `json:"space_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
	TotalPrice string `json:"total_price"`
	Amount     string `json:"amount,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

func New(name string, aggregateID int64, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", name, err)
	}
	return Event{
		ID:          uuid.NewString(),
		Name:        name,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Payload:     raw,
	}, nil
}

func (e Event) Decode(dst any) error {
	return json.Unmarshal(e.Payload, dst)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Handler func(ctx context.Context, e Event) error

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
