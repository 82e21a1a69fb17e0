package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacebook/internal/domain"
	"spacebook/internal/events"
	"spacebook/internal/modules/booking"
	"spacebook/internal/modules/payment"
	"spacebook/internal/pkg/pricing"
	"spacebook/internal/policy"
	"spacebook/internal/testutil"
)

func TestSubscriber_RoutesEventToOwnerChannels(t *testing.T) {
	store, f := newStore(t)
	email, push, sms := &captureSender{}, &captureSender{}, &captureSender{}
	d := NewDispatcher(store, nil, nil).
		Register(domain.NotificationEmail, email).
		Register(domain.NotificationPush, push).
		Register(domain.NotificationSMS, sms)
	sub := NewSubscriber(d, store.Repos().Users, nil)

	e, err := events.New(events.BookingConfirmed, 11, events.BookingPayload{
		BookingID: 11, UserID: f.User.ID, SpaceID: f.Space.ID, Date: "2024-01-20",
		StartTime: "09:00", EndTime: "12:00", Status: "confirmed", TotalPrice: "123.99",
	})
	require.NoError(t, err)
	require.NoError(t, sub.Handle(context.Background(), e))

	require.Len(t, email.Sent(), 1)
	assert.Equal(t, f.User.Email, email.Sent()[0].Recipient)
	require.Len(t, push.Sent(), 1)
	assert.Equal(t, f.User.FCMToken, push.Sent()[0].Recipient)
	require.Len(t, sms.Sent(), 1)
	assert.Equal(t, f.User.Phone, sms.Sent()[0].Recipient)

	rows, err := store.Repos().Notifications.ListByUser(context.Background(), f.User.ID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, n := range rows {
		assert.Equal(t, domain.ChannelBookingConfirmation, n.Channel)
		assert.Equal(t, domain.NotificationSent, n.Status)
		require.NotNil(t, n.BookingID)
		assert.Equal(t, int64(11), *n.BookingID)
		assert.Nil(t, n.PaymentID)
	}
}

func TestSubscriber_IgnoresUnknownAndMissingUsers(t *testing.T) {
	store, f := newStore(t)
	email := &captureSender{}
	sub := NewSubscriber(NewDispatcher(store, nil, nil).Register(domain.NotificationEmail, email), store.Repos().Users, nil)
	ctx := context.Background()

	e, err := events.New("space.renamed", 1, map[string]string{"name": "x"})
	require.NoError(t, err)
	assert.NoError(t, sub.Handle(ctx, e))

	e, err = events.New(events.BookingCreated, 1, events.BookingPayload{BookingID: 1, UserID: 9999})
	require.NoError(t, err)
	assert.NoError(t, sub.Handle(ctx, e))

	bad := events.Event{Name: events.BookingCreated, Payload: []byte(`"nope"`)}
	assert.Error(t, sub.Handle(ctx, bad))

	assert.Empty(t, email.Sent())
	rows, err := store.Repos().Notifications.ListByUser(ctx, f.User.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// A confirmation that cannot be delivered leaves the booking confirmed.
func TestSettlement_NotificationFailureDoesNotRollBack(t *testing.T) {
	store := testutil.NewStore(t)
	f := testutil.Seed(t, store)
	testutil.OpenDay(t, store, f.Space.ID, "2024-01-20")
	ctx := context.Background()

	failing := SenderFunc(func(context.Context, Message) error { return errors.New("smtp: connection refused") })
	d := NewDispatcher(store, nil, nil).
		Register(domain.NotificationEmail, failing).
		Register(domain.NotificationPush, failing).
		Register(domain.NotificationSMS, failing)

	bus := events.NewMemoryBus(nil, 64, 1)
	bus.Subscribe(NewSubscriber(d, store.Repos().Users, nil).Handle)

	bookings := booking.NewService(store, policy.New(), pricing.NewPolicy(8), bus, nil)
	payments := payment.NewService(store, policy.New(), payment.NewFakeGateway(), bus, "usd", nil)
	owner := policy.Subject{UserID: f.User.ID, Role: f.User.Role}

	b, err := bookings.CreateBooking(ctx, owner, booking.CreateBookingRequest{
		SpaceID: f.Space.ID, Date: "2024-01-20", StartTime: "09:00", EndTime: "12:00",
	})
	require.NoError(t, err)

	amount := decimal.RequireFromString("123.99")
	p, err := payments.CreatePayment(ctx, owner, payment.CreatePaymentRequest{
		BookingID: b.ID, Amount: &amount, Method: "card", PaymentToken: "pm_card_visa",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, p.Status)

	require.NoError(t, bus.Close())

	got, err := store.Repos().Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)

	rows, err := store.Repos().Notifications.ListByUser(ctx, f.User.ID, 50)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	channels := map[string]bool{}
	for _, n := range rows {
		assert.Equal(t, domain.NotificationFailed, n.Status, n.Channel)
		assert.Equal(t, 1, n.RetryCount)
		assert.NotEmpty(t, n.ErrorMessage)
		channels[n.Channel] = true
	}
	assert.True(t, channels[domain.ChannelBookingConfirmation])
	assert.True(t, channels[domain.ChannelPaymentReceipt])
	assert.True(t, channels[domain.ChannelBookingCreated])
}
