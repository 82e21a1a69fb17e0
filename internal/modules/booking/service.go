package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"spacebook/internal/domain"
	"spacebook/internal/events"
	"spacebook/internal/modules/availability"
	"spacebook/internal/pkg/apperror"
	"spacebook/internal/pkg/interval"
	"spacebook/internal/pkg/obs"
	"spacebook/internal/pkg/pricing"
	"spacebook/internal/policy"
	"spacebook/internal/repository"
)

type Service struct {
	store     repository.UnitOfWork
	policy    policy.Evaluator
	pricing   pricing.Policy
	publisher events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewService(
	store repository.UnitOfWork,
	pol policy.Evaluator,
	pricingPolicy pricing.Policy,
	publisher events.Publisher,
	log *zap.Logger,
) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:     store,
		policy:    pol,
		pricing:   pricingPolicy,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) CreateBooking(ctx context.Context, subj policy.Subject, req CreateBookingRequest) (*domain.Booking, error) {
	ctx, span := obs.Start(ctx, "booking.Create")
	defer span.End()

	if subj.UserID == 0 {
		return nil, apperror.Unauthorized("authentication required")
	}
	day, err := interval.ParseDate(req.Date)
	if err != nil {
		return nil, ErrValidation.WithMessage("date must be YYYY-MM-DD")
	}
	iv, err := interval.Parse(req.StartTime, req.EndTime)
	if err != nil {
		return nil, ErrValidation.WithMessage("start_time and end_time must be distinct HH:MM values")
	}
	date := day.Format(interval.DateLayout)
	if req.SpaceID <= 0 {
		return nil, ErrValidation.WithMessage("space_id is required")
	}

	var created *domain.Booking
	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		// The space row lock serializes concurrent creates on one space so the
		// overlap check below sees every committed booking.
		space, err := r.Spaces.GetForUpdate(ctx, req.SpaceID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrSpaceNotFound
			}
			return err
		}
		if !space.IsActive {
			return ErrUnavailable.WithMessage("space is not accepting bookings")
		}

		hours := iv.Duration()
		price, err := s.pricing.Quote(hours, space.HourlyRate, space.DailyRate)
		if err != nil {
			return err
		}

		open, err := availability.HasAvailableOverlap(ctx, r, space.ID, date, iv)
		if err != nil {
			return err
		}
		if !open {
			return ErrUnavailable
		}

		clash, err := findOverlap(ctx, r, space.ID, day, iv)
		if err != nil {
			return err
		}
		if clash != nil {
			return ErrOverlap
		}

		created = &domain.Booking{
			UserID:     subj.UserID,
			SpaceID:    space.ID,
			LocationID: space.LocationID,
			Date:       date,
			StartTime:  iv.Start.String(),
			EndTime:    iv.End.String(),
			TotalHours: hours,
			TotalPrice: price,
			Status:     domain.BookingPending,
			Notes:      strings.TrimSpace(req.Notes),
		}
		return r.Bookings.Create(ctx, created)
	})
	if err != nil {
		return nil, apperror.From(err)
	}

	s.publish(ctx, events.BookingCreated, created)
	return created, nil
}

func (s *Service) GetBooking(ctx context.Context, subj policy.Subject, id int64) (*domain.Booking, error) {
	b, managerID, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(s.policy, subj, policy.BookingResource(b, managerID), policy.ActionRead); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) ListBookings(ctx context.Context, subj policy.Subject, q ListQuery) ([]domain.Booking, error) {
	f := repository.BookingFilter{SpaceID: q.SpaceID, Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		st := domain.BookingStatus(q.Status)
		if !st.Valid() {
			return nil, ErrInvalidStatus
		}
		f.Status = st
	}

	switch policy.Scope(subj) {
	case policy.ScopeAll:
	case policy.ScopeOwned:
		f.UserID = subj.UserID
	case policy.ScopeManaged:
		ids, err := s.store.Repos().Spaces.LocationIDsManagedBy(ctx, subj.UserID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		f.LocationIDs = ids
		if f.LocationIDs == nil {
			f.LocationIDs = []int64{}
		}
	default:
		return nil, apperror.Forbidden("you are not allowed to list bookings")
	}

	out, err := s.store.Repos().Bookings.List(ctx, f)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

// TransitionStatus is the manual status change. Managers of the space and
// admins may apply any legal transition; owners may only cancel while pending.
func (s *Service) TransitionStatus(ctx context.Context, subj policy.Subject, id int64, status string) (*domain.Booking, error) {
	next := domain.BookingStatus(strings.ToLower(strings.TrimSpace(status)))
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	b, managerID, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	authErr := policy.Authorize(s.policy, subj, policy.BookingResource(b, managerID), policy.ActionUpdateStatus)
	ownerCancel := authErr != nil && b.UserID == subj.UserID && next == domain.BookingCancelled
	if authErr != nil && (!ownerCancel || b.Status != domain.BookingPending) {
		return nil, authErr
	}

	var updated *domain.Booking
	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		if ownerCancel {
			// The owner exception holds only while the locked row is still pending.
			var locked *domain.Booking
			if locked, err = r.Bookings.GetForUpdate(ctx, id); err != nil {
				return mapErr(err)
			}
			if locked.Status != domain.BookingPending {
				return authErr
			}
		}
		updated, err = Transition(ctx, r, id, next, s.now())
		return err
	})
	if err != nil {
		return nil, apperror.From(err)
	}

	s.publish(ctx, EventFor(next), updated)
	return updated, nil
}

func (s *Service) DeleteBooking(ctx context.Context, subj policy.Subject, id int64) error {
	b, managerID, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(s.policy, subj, policy.BookingResource(b, managerID), policy.ActionDelete); err != nil {
		return err
	}

	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		locked, err := r.Bookings.GetForUpdate(ctx, id)
		if err != nil {
			return mapErr(err)
		}
		if locked.Status != domain.BookingPending && locked.Status != domain.BookingCancelled {
			return ErrNotDeletable.WithMessage("booking is " + string(locked.Status) + "; only pending or cancelled bookings can be deleted")
		}
		payments, err := r.Payments.ListByBooking(ctx, id)
		if err != nil {
			return err
		}
		if len(payments) > 0 {
			return ErrHasPayments
		}
		return mapErr(r.Bookings.Delete(ctx, id))
	})
	if err != nil {
		return apperror.From(err)
	}
	return nil
}

// load fetches a booking and the manager of its location.
func (s *Service) load(ctx context.Context, id int64) (*domain.Booking, int64, error) {
	r := s.store.Repos()
	b, err := r.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	managerID, err := ManagerOf(ctx, r, b.SpaceID)
	if err != nil {
		return nil, 0, err
	}
	return b, managerID, nil
}

// ManagerOf returns the manager of the location that owns spaceID.
func ManagerOf(ctx context.Context, r repository.Repositories, spaceID int64) (int64, error) {
	space, err := r.Spaces.GetByID(ctx, spaceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrSpaceNotFound
		}
		return 0, apperror.Internal(err)
	}
	if space.Location == nil {
		return 0, nil
	}
	return space.Location.ManagerID, nil
}

// EventFor maps a booking status to the event announcing it.
func EventFor(status domain.BookingStatus) string {
	switch status {
	case domain.BookingConfirmed:
		return events.BookingConfirmed
	case domain.BookingCancelled:
		return events.BookingCancelled
	case domain.BookingCompleted:
		return events.BookingCompleted
	}
	return events.BookingCreated
}

// Payload builds the event body for b.
func Payload(b *domain.Booking) events.BookingPayload {
	return events.BookingPayload{
		BookingID:  b.ID,
		UserID:     b.UserID,
		SpaceID:    b.SpaceID,
		Date:       b.Date,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Status:     string(b.Status),
		TotalPrice: b.TotalPrice.StringFixed(2),
	}
}

// publish runs after commit; failures are logged and never reach the caller.
func (s *Service) publish(ctx context.Context, name string, b *domain.Booking) {
	e, err := events.New(name, b.ID, Payload(b))
	if err != nil {
		s.log.Error("build event", zap.String("event", name), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		s.log.Warn("publish event failed", zap.String("event", name), zap.Int64("booking_id", b.ID), zap.Error(err))
	}
}
