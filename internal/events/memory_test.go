package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBusDeliversAndDrainsOnClose(t *testing.T) {
	bus := NewMemoryBus(nil, 16, 2)

	var (
		mu   sync.Mutex
		seen []string
	)
	bus.Subscribe(func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.Name)
		return nil
	})

	for _, name := range []string{BookingCreated, BookingConfirmed, PaymentCompleted} {
		e, err := New(name, 1, BookingPayload{BookingID: 1})
		require.NoError(t, err)
		require.NoError(t, bus.Publish(context.Background(), e))
	}
	require.NoError(t, bus.Close())

	assert.ElementsMatch(t, []string{BookingCreated, BookingConfirmed, PaymentCompleted}, seen)
}

func TestMemoryBusHandlerErrorsDoNotStopDelivery(t *testing.T) {
	bus := NewMemoryBus(nil, 4, 1)
	var calls int
	bus.Subscribe(func(context.Context, Event) error { return errors.New("smtp down") })
	bus.Subscribe(func(context.Context, Event) error { calls++; return nil })
	bus.Subscribe(func(context.Context, Event) error { panic("bad handler") })

	e, err := New(BookingCreated, 1, BookingPayload{})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), e))
	require.NoError(t, bus.Close())

	assert.Equal(t, 1, calls)
}

func TestMemoryBusRejectsAfterClose(t *testing.T) {
	bus := NewMemoryBus(nil, 1, 1)
	require.NoError(t, bus.Close())

	e, err := New(BookingCreated, 1, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, bus.Publish(context.Background(), e), ErrBusClosed)
}

func TestEventDecode(t *testing.T) {
	e, err := New(PaymentFailed, 7, BookingPayload{BookingID: 7, Reason: "card declined"})
	require.NoError(t, err)

	var p BookingPayload
	require.NoError(t, e.Decode(&p))
	assert.Equal(t, int64(7), p.BookingID)
	assert.Equal(t, "card declined", p.Reason)
	assert.NotEmpty(t, e.ID)
}
