package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacebook/internal/domain"
	"spacebook/internal/events"
	"spacebook/internal/pkg/apperror"
	"spacebook/internal/pkg/pricing"
	"spacebook/internal/policy"
	"spacebook/internal/repository"
	"spacebook/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name)
	}
	return out
}

type env struct {
	svc   *Service
	store *repository.GormStore
	f     *testutil.Fixture
	pub   *recordingPublisher
}

func setup(t *testing.T) *env {
	t.Helper()
	store := testutil.NewStore(t)
	f := testutil.Seed(t, store)
	testutil.OpenDay(t, store, f.Space.ID, "2024-01-19")
	testutil.OpenDay(t, store, f.Space.ID, "2024-01-20")
	testutil.OpenDay(t, store, f.Space.ID, "2024-01-21")
	pub := &recordingPublisher{}
	svc := NewService(store, policy.New(), pricing.NewPolicy(8), pub, nil)
	return &env{svc: svc, store: store, f: f, pub: pub}
}

func as(u *domain.User) policy.Subject {
	return policy.Subject{UserID: u.ID, Role: u.Role}
}

func (e *env) book(t *testing.T, u *domain.User, date, start, end string) *domain.Booking {
	t.Helper()
	b, err := e.svc.CreateBooking(context.Background(), as(u), CreateBookingRequest{
		SpaceID: e.f.Space.ID, Date: date, StartTime: start, EndTime: end,
	})
	require.NoError(t, err)
	return b
}

func TestCreateBooking_ComputesHoursAndPrice(t *testing.T) {
	e := setup(t)

	b := e.book(t, e.f.User, "2024-01-20", "09:00", "12:00")

	assert.Equal(t, domain.BookingPending, b.Status)
	assert.True(t, b.TotalHours.Equal(decimal.NewFromInt(3)), b.TotalHours.String())
	assert.True(t, b.TotalPrice.Equal(decimal.RequireFromString("123.99")), b.TotalPrice.String())
	assert.Equal(t, e.f.Location.ID, b.LocationID)
	assert.Equal(t, []string{events.BookingCreated}, e.pub.names())
}

func TestCreateBooking_DailyRateAboveThreshold(t *testing.T) {
	e := setup(t)
	b := e.book(t, e.f.User, "2024-01-20", "08:00", "18:00")
	assert.True(t, b.TotalPrice.Equal(decimal.RequireFromString("250")), b.TotalPrice.String())
}

func TestCreateBooking_OverlapIsConflict(t *testing.T) {
	e := setup(t)
	e.book(t, e.f.User, "2024-01-20", "09:00", "12:00")

	_, err := e.svc.CreateBooking(context.Background(), as(e.f.Other), CreateBookingRequest{
		SpaceID: e.f.Space.ID, Date: "2024-01-20", StartTime: "11:00", EndTime: "13:00",
	})
	assert.ErrorIs(t, err, ErrOverlap)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestCreateBooking_StoresNormalizedDateAndTimes(t *testing.T) {
	e := setup(t)
	a := e.book(t, e.f.User, " 2024-01-20 ", " 09:00", "12:00 ")
	assert.Equal(t, "2024-01-20", a.Date)
	assert.Equal(t, "09:00", a.StartTime)
	assert.Equal(t, "12:00", a.EndTime)

	_, err := e.svc.CreateBooking(context.Background(), as(e.f.Other), CreateBookingRequest{
		SpaceID: e.f.Space.ID, Date: "2024-01-20", StartTime: "11:00", EndTime: "13:00",
	})
	assert.ErrorIs(t, err, ErrOverlap)
}

func TestCreateBooking_TouchingIntervalsAllowed(t *testing.T) {
	e := setup(t)
	e.book(t, e.f.User, "2024-01-20", "09:00", "12:00")
	e.book(t, e.f.User, "2024-01-20", "12:00", "13:00")
	e.book(t, e.f.User, "2024-01-20", "08:00", "09:00")
}

func TestCreateBooking_CancelledBookingFreesSlot(t *testing.T) {
	e := setup(t)
	b := e.book(t, e.f.User, "2024-01-20", "09:00", "12:00")

	_, err := e.svc.TransitionStatus(context.Background(), as(e.f.User), b.ID, "cancelled")
	require.NoError(t, err)

	e.book(t, e.f.Other, "2024-01-20", "10:00", "11:00")
}

func TestCreateBooking_MidnightWrap(t *testing.T) {
	e := setup(t)
	b := e.book(t, e.f.User, "2024-01-20", "22:00", "02:00")
	assert.True(t, b.TotalHours.Equal(decimal.NewFromInt(4)), b.TotalHours.String())

	_, err := e.svc.CreateBooking(context.Background(), as(e.f.User), CreateBookingRequest{
		SpaceID: e.f.Space.ID, Date: "2024-01-20", StartTime: "23:00", EndTime: "23:30",
	})
	assert.ErrorIs(t, err, ErrOverlap)

	_, err = e.svc.CreateBooking(context.Background(), as(e.f.User), CreateBookingRequest{
		SpaceID: e.f.Space.ID, Date: "2024-01-21", StartTime: "01:00", EndTime: "03:00",
	})
	assert.ErrorIs(t, err, ErrOverlap)

	e.book(t, e.f.User, "2024-01-21", "02:00", "03:00")
}

func TestCreateBooking_Unavailable(t *testing.T) {
	e := setup(t)
	testutil.Block(t, e.store, e.f.Space.ID, "2024-02-01", "09:00", "12:00", true)
	testutil.Block(t, e.store, e.f.Space.ID, "2024-02-01", "14:00", "18:00", false)
	ctx := context.Background()

	_, err := e.svc.CreateBooking(ctx, as(e.f.User), CreateBookingRequest{SpaceID: e.f.Space.ID, Date: "2024-02-01", StartTime: "14:00", EndTime: "15:00"})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = e.svc.CreateBooking(ctx, as(e.f.User), CreateBookingRequest{SpaceID: e.f.Space.ID, Date: "2024-02-02", StartTime: "10:00", EndTime: "11:00"})
	assert.ErrorIs(t, err, ErrUnavailable)

	// Partial overlap with an open block passes the coarse check.
	_, err = e.svc.CreateBooking(ctx, as(e.f.User), CreateBookingRequest{SpaceID: e.f.Space.ID, Date: "2024-02-01", StartTime: "11:00", EndTime: "13:00"})
	assert.NoError(t, err)
}

func TestCreateBooking_Validation(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.svc.CreateBooking(ctx, as(e.f.User), CreateBookingRequest{SpaceID: e.f.Space.ID, Date: "2024-01-20", StartTime: "10:00", EndTime: "10:00"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = e.svc.CreateBooking(ctx, as(e.f.User), CreateBookingRequest{SpaceID: 999, Date: "2024-01-20", StartTime: "10:00", EndTime: "11:00"})
	assert.ErrorIs(t, err, ErrSpaceNotFound)

	_, err = e.svc.CreateBooking(ctx, policy.Subject{}, CreateBookingRequest{SpaceID: e.f.Space.ID, Date: "2024-01-20", StartTime: "10:00", EndTime: "11:00"})
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
}

func TestCreateBooking_ConcurrentSameSlotOnlyOneWins(t *testing.T) {
	e := setup(t)
	const n = 8

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		conflict int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.svc.CreateBooking(context.Background(), as(e.f.User), CreateBookingRequest{
				SpaceID: e.f.Space.ID, Date: "2024-01-20", StartTime: "09:00", EndTime: "10:00",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case apperror.KindOf(err) == apperror.KindConflict:
				conflict++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflict)
}

func TestGetBooking_ReadBackAndAuthorization(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	created := e.book(t, e.f.User, "2024-01-20", "09:00", "10:20")

	got, err := e.svc.GetBooking(ctx, as(e.f.User), created.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalHours.Equal(created.TotalHours))
	assert.True(t, got.TotalPrice.Equal(created.TotalPrice))
	assert.Equal(t, created.Status, got.Status)
	assert.Equal(t, "1.33", got.TotalHours.StringFixed(2))

	_, err = e.svc.GetBooking(ctx, as(e.f.Manager), created.ID)
	assert.NoError(t, err)
	_, err = e.svc.GetBooking(ctx, as(e.f.Admin), created.ID)
	assert.NoError(t, err)

	_, err = e.svc.GetBooking(ctx, as(e.f.Other), created.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	_, err = e.svc.GetBooking(ctx, as(e.f.User), 9999)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListBookings_ScopedByRole(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.book(t, e.f.User, "2024-01-20", "09:00", "10:00")
	e.book(t, e.f.Other, "2024-01-20", "10:00", "11:00")

	mine, err := e.svc.ListBookings(ctx, as(e.f.User), ListQuery{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	managed, err := e.svc.ListBookings(ctx, as(e.f.Manager), ListQuery{})
	require.NoError(t, err)
	assert.Len(t, managed, 2)

	// Other manages no location; bookings they made themselves are not in scope.
	none, err := e.svc.ListBookings(ctx, as(e.f.Other), ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := e.svc.ListBookings(ctx, as(e.f.Admin), ListQuery{Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = e.svc.ListBookings(ctx, as(e.f.Admin), ListQuery{Status: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTransitionStatus_StateMachine(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	b := e.book(t, e.f.User, "2024-01-20", "09:00", "10:00")

	_, err := e.svc.TransitionStatus(ctx, as(e.f.User), b.ID, "confirmed")
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	confirmed, err := e.svc.TransitionStatus(ctx, as(e.f.Manager), b.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, confirmed.Status)

	_, err = e.svc.TransitionStatus(ctx, as(e.f.Manager), b.ID, "pending")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Owners may only cancel while pending.
	_, err = e.svc.TransitionStatus(ctx, as(e.f.User), b.ID, "cancelled")
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	completed, err := e.svc.TransitionStatus(ctx, as(e.f.Admin), b.ID, "completed")
	require.NoError(t, err)
	assert.NotNil(t, completed.CompletedAt)

	for _, next := range []string{"cancelled", "confirmed", "completed", "pending"} {
		_, err = e.svc.TransitionStatus(ctx, as(e.f.Admin), b.ID, next)
		assert.ErrorIs(t, err, ErrInvalidTransition, next)
		assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
	}

	_, err = e.svc.TransitionStatus(ctx, as(e.f.Admin), b.ID, "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	assert.Equal(t, []string{events.BookingCreated, events.BookingConfirmed, events.BookingCompleted}, e.pub.names())
}

func TestTransitionStatus_CancelledIsTerminal(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	b := e.book(t, e.f.User, "2024-01-20", "09:00", "10:00")

	cancelled, err := e.svc.TransitionStatus(ctx, as(e.f.Manager), b.ID, "cancelled")
	require.NoError(t, err)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = e.svc.TransitionStatus(ctx, as(e.f.Manager), b.ID, "confirmed")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// confirmingStore commits a confirmation of bookingID right before the next
// transaction opens, as a settlement racing a manual status change would.
type confirmingStore struct {
	*repository.GormStore
	bookingID int64
}

func (s *confirmingStore) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	err := s.GormStore.WithinTx(ctx, func(r repository.Repositories) error {
		_, err := Transition(ctx, r, s.bookingID, domain.BookingConfirmed, time.Now())
		return err
	})
	if err != nil {
		return err
	}
	return s.GormStore.WithinTx(ctx, fn)
}

func TestTransitionStatus_OwnerCancelRechecksLockedStatus(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	b := e.book(t, e.f.User, "2024-01-20", "09:00", "10:00")

	svc := NewService(&confirmingStore{GormStore: e.store, bookingID: b.ID}, policy.New(), pricing.NewPolicy(8), e.pub, nil)
	_, err := svc.TransitionStatus(ctx, as(e.f.User), b.ID, "cancelled")
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	got, err := e.store.Repos().Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
	assert.Nil(t, got.CancelledAt)
}

func TestDeleteBooking(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	pending := e.book(t, e.f.User, "2024-01-20", "09:00", "10:00")
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(e.svc.DeleteBooking(ctx, as(e.f.Manager), pending.ID)))
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(e.svc.DeleteBooking(ctx, as(e.f.Other), pending.ID)))
	require.NoError(t, e.svc.DeleteBooking(ctx, as(e.f.User), pending.ID))
	assert.ErrorIs(t, e.svc.DeleteBooking(ctx, as(e.f.User), pending.ID), ErrBookingNotFound)

	confirmed := e.book(t, e.f.User, "2024-01-20", "10:00", "11:00")
	_, err := e.svc.TransitionStatus(ctx, as(e.f.Manager), confirmed.ID, "confirmed")
	require.NoError(t, err)
	assert.ErrorIs(t, e.svc.DeleteBooking(ctx, as(e.f.Admin), confirmed.ID), ErrNotDeletable)

	_, err = e.svc.TransitionStatus(ctx, as(e.f.Manager), confirmed.ID, "completed")
	require.NoError(t, err)
	err = e.svc.DeleteBooking(ctx, as(e.f.User), confirmed.ID)
	assert.ErrorIs(t, err, ErrNotDeletable)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	cancelled := e.book(t, e.f.User, "2024-01-20", "11:00", "12:00")
	_, err = e.svc.TransitionStatus(ctx, as(e.f.User), cancelled.ID, "cancelled")
	require.NoError(t, err)
	require.NoError(t, e.svc.DeleteBooking(ctx, as(e.f.Admin), cancelled.ID))
}

func TestDeleteBooking_KeepsPaymentHistory(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	b := e.book(t, e.f.User, "2024-01-20", "09:00", "10:00")

	p := &domain.Payment{BookingID: b.ID, UserID: e.f.User.ID, Amount: b.TotalPrice, Currency: "usd", Method: domain.MethodCard, Status: domain.PaymentFailed}
	require.NoError(t, e.store.Repos().Payments.Create(ctx, p))

	assert.ErrorIs(t, e.svc.DeleteBooking(ctx, as(e.f.User), b.ID), ErrHasPayments)
}
