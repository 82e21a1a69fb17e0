package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spacebook/internal/domain"
	"spacebook/internal/pkg/apperror"
	"spacebook/internal/pkg/interval"
	"spacebook/internal/repository"
)

// Transition moves a booking to next inside the caller's transaction. It locks
// the booking row and enforces the state machine but not authorization; the
// settlement flow calls it on payment outcomes.
func Transition(ctx context.Context, r repository.Repositories, bookingID int64, next domain.BookingStatus, at time.Time) (*domain.Booking, error) {
	b, err := r.Bookings.GetForUpdate(ctx, bookingID)
	if err != nil {
		return nil, mapErr(err)
	}
	if err := checkTransition(b.Status, next); err != nil {
		return nil, err
	}
	if err := r.Bookings.UpdateStatus(ctx, b.ID, next, at); err != nil {
		return nil, mapErr(err)
	}
	b.Status = next
	b.UpdatedAt = at
	switch next {
	case domain.BookingCancelled:
		b.CancelledAt = &at
	case domain.BookingCompleted:
		b.CompletedAt = &at
	}
	return b, nil
}

func checkTransition(from, to domain.BookingStatus) error {
	if from.Terminal() {
		return ErrInvalidTransition.WithMessage(fmt.Sprintf("booking is %s and can no longer change status", from))
	}
	if !from.CanTransitionTo(to) {
		return ErrInvalidTransition.WithMessage(fmt.Sprintf("cannot change booking status from %s to %s", from, to))
	}
	return nil
}

// findOverlap returns the first active booking on the space that overlaps
// [iv] on day. Bookings from the neighbouring dates are included so intervals
// running past midnight are compared too.
func findOverlap(ctx context.Context, r repository.Repositories, spaceID int64, day time.Time, iv interval.Interval) (*domain.Booking, error) {
	dates := []string{
		day.AddDate(0, 0, -1).Format(interval.DateLayout),
		day.Format(interval.DateLayout),
		day.AddDate(0, 0, 1).Format(interval.DateLayout),
	}
	existing, err := r.Bookings.ListActiveBySpaceDates(ctx, spaceID, dates)
	if err != nil {
		return nil, err
	}

	want := iv.On(day)
	for i := range existing {
		b := &existing[i]
		bDay, err := interval.ParseDate(b.Date)
		if err != nil {
			return nil, fmt.Errorf("booking %d has malformed date: %w", b.ID, err)
		}
		biv, err := interval.Parse(b.StartTime, b.EndTime)
		if err != nil {
			return nil, fmt.Errorf("booking %d has malformed interval: %w", b.ID, err)
		}
		if biv.On(bDay).Overlaps(want) {
			return b, nil
		}
	}
	return nil, nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrBookingNotFound
	}
	return apperror.From(err)
}
