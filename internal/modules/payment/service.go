package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"spacebook/internal/domain"
	"spacebook/internal/events"
	"spacebook/internal/modules/booking"
	"spacebook/internal/pkg/apperror"
	"spacebook/internal/pkg/obs"
	"spacebook/internal/policy"
	"spacebook/internal/repository"
)

// Service is the settlement coordinator: it owns payment records and keeps the
// booking status in step with each payment outcome.
type Service struct {
	store     repository.UnitOfWork
	policy    policy.Evaluator
	gateway   Gateway
	publisher events.Publisher
	currency  string
	log       *zap.Logger
	now       func() time.Time
}

func NewService(
	store repository.UnitOfWork,
	pol policy.Evaluator,
	gateway Gateway,
	publisher events.Publisher,
	currency string,
	log *zap.Logger,
) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		store:     store,
		policy:    pol,
		gateway:   gateway,
		publisher: publisher,
		currency:  strings.ToLower(currency),
		log:       log,
		now:       time.Now,
	}
}

// CreatePayment records a payment for a pending booking. Online methods are
// charged through the gateway before the transaction opens: an approval
// confirms the booking in the same transaction as the payment insert, a
// decline commits a failed payment and returns it together with ErrDeclined.
func (s *Service) CreatePayment(ctx context.Context, subj policy.Subject, req CreatePaymentRequest) (*domain.Payment, error) {
	ctx, span := obs.Start(ctx, "payment.Create")
	defer span.End()

	if subj.UserID == 0 {
		return nil, apperror.Unauthorized("authentication required")
	}
	method := domain.PaymentMethod(strings.ToLower(strings.TrimSpace(req.Method)))
	if !method.Valid() {
		return nil, ErrValidation.WithMessage("method must be one of card, cash, transfer, wallet")
	}
	if req.Amount == nil {
		return nil, ErrValidation.WithMessage("amount is required")
	}

	b, managerID, err := s.loadBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(s.policy, subj, policy.BookingResource(b, managerID), policy.ActionPay); err != nil {
		return nil, err
	}
	if !req.Amount.Equal(b.TotalPrice) {
		return nil, ErrAmountMismatch.WithMessage("amount " + req.Amount.StringFixed(2) + " does not match booking total " + b.TotalPrice.StringFixed(2))
	}
	if err := checkPayable(ctx, s.store.Repos(), b); err != nil {
		return nil, err
	}

	p := &domain.Payment{
		BookingID: b.ID,
		UserID:    b.UserID,
		Amount:    b.TotalPrice,
		Currency:  s.currency,
		Method:    method,
		Status:    domain.PaymentPending,
	}

	if method.Online() {
		if s.gateway == nil {
			return nil, ErrGateway.WithMessage("online payments are not configured")
		}
		out, err := s.gateway.Charge(ctx, Charge{BookingID: b.ID, Amount: b.TotalPrice, Currency: s.currency, Token: req.PaymentToken})
		if err != nil {
			s.log.Error("gateway charge failed", zap.Int64("booking_id", b.ID), zap.Error(err))
			return nil, ErrGateway.Wrap(err)
		}
		if out.TransactionID != "" {
			txID := out.TransactionID
			p.TransactionID = &txID
		}
		now := s.now()
		if out.Approved {
			p.Status = domain.PaymentCompleted
			p.PaidAt = &now
		} else {
			p.Status = domain.PaymentFailed
			p.FailureReason = out.Reason
		}
	}

	var confirmed *domain.Booking
	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		locked, err := r.Bookings.GetForUpdate(ctx, b.ID)
		if err != nil {
			return mapBookingErr(err)
		}
		if p.Status != domain.PaymentFailed {
			if err := checkPayable(ctx, r, locked); err != nil {
				return err
			}
		}
		if err := r.Payments.Create(ctx, p); err != nil {
			return err
		}
		if p.Status == domain.PaymentCompleted {
			confirmed, err = booking.Transition(ctx, r, b.ID, domain.BookingConfirmed, s.now())
			return err
		}
		return nil
	})
	if err != nil {
		if p.Status == domain.PaymentCompleted && p.TransactionID != nil {
			s.compensate(ctx, *p.TransactionID)
		}
		return nil, apperror.From(err)
	}

	switch p.Status {
	case domain.PaymentCompleted:
		s.publishPayment(ctx, events.PaymentCompleted, p, confirmed)
		s.publishBooking(ctx, confirmed)
	case domain.PaymentFailed:
		s.publishPayment(ctx, events.PaymentFailed, p, b)
		return p, ErrDeclined.WithMessage(declineMessage(p.FailureReason))
	}
	return p, nil
}

// UpdatePaymentStatus applies a manual or callback-driven status change. The
// payment write and the booking cascade commit together or not at all.
func (s *Service) UpdatePaymentStatus(ctx context.Context, subj policy.Subject, id int64, req UpdateStatusRequest) (*domain.Payment, error) {
	ctx, span := obs.Start(ctx, "payment.UpdateStatus")
	defer span.End()

	next := domain.PaymentStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	p, managerID, err := s.loadPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(s.policy, subj, paymentResource(p, managerID), policy.ActionUpdateStatus); err != nil {
		return nil, err
	}

	var cascaded *domain.Booking
	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		locked, err := r.Payments.GetForUpdate(ctx, id)
		if err != nil {
			return mapPaymentErr(err)
		}
		if !locked.Status.CanTransitionTo(next) {
			return ErrInvalidTransition.WithMessage("cannot change payment status from " + string(locked.Status) + " to " + string(next))
		}

		now := s.now()
		locked.Status = next
		switch next {
		case domain.PaymentCompleted:
			locked.PaidAt = &now
		case domain.PaymentFailed:
			locked.FailureReason = strings.TrimSpace(req.Reason)
		case domain.PaymentRefunded:
			locked.RefundedAt = &now
		}
		if err := r.Payments.Save(ctx, locked); err != nil {
			return mapPaymentErr(err)
		}
		p = locked

		effect, ok := next.BookingEffect()
		if !ok {
			return nil
		}
		b, err := r.Bookings.GetForUpdate(ctx, locked.BookingID)
		if err != nil {
			return mapBookingErr(err)
		}
		if b.Status == effect {
			return nil
		}
		cascaded, err = booking.Transition(ctx, r, b.ID, effect, now)
		return err
	})
	if err != nil {
		return nil, apperror.From(err)
	}

	b := cascaded
	if b == nil {
		if b, err = s.store.Repos().Bookings.GetByID(ctx, p.BookingID); err != nil {
			s.log.Warn("reload booking for event", zap.Int64("booking_id", p.BookingID), zap.Error(err))
			b = nil
		}
	}
	if name := eventFor(next); name != "" && b != nil {
		s.publishPayment(ctx, name, p, b)
	}
	if cascaded != nil {
		s.publishBooking(ctx, cascaded)
	}
	return p, nil
}

func (s *Service) GetPayment(ctx context.Context, subj policy.Subject, id int64) (*domain.Payment, error) {
	p, managerID, err := s.loadPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(s.policy, subj, paymentResource(p, managerID), policy.ActionRead); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPayments(ctx context.Context, subj policy.Subject, q ListQuery) ([]domain.Payment, error) {
	f := repository.PaymentFilter{BookingID: q.BookingID}

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
		return nil, apperror.Forbidden("you are not allowed to list payments")
	}

	out, err := s.store.Repos().Payments.List(ctx, f)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

// checkPayable rejects bookings that are not pending or already carry an
// active payment. A failed payment does not block a retry.
func checkPayable(ctx context.Context, r repository.Repositories, b *domain.Booking) error {
	if b.Status != domain.BookingPending {
		return ErrNotPayable.WithMessage("booking is " + string(b.Status) + "; only pending bookings can be paid")
	}
	existing, err := r.Payments.ListByBooking(ctx, b.ID)
	if err != nil {
		return apperror.Internal(err)
	}
	for _, p := range existing {
		if p.Status == domain.PaymentPending || p.Status == domain.PaymentCompleted {
			return ErrDuplicate
		}
	}
	return nil
}

// compensate refunds a charge whose payment row could not be committed.
func (s *Service) compensate(ctx context.Context, transactionID string) {
	if err := s.gateway.Refund(context.WithoutCancel(ctx), transactionID); err != nil {
		s.log.Error("refund of uncommitted charge failed", zap.String("transaction_id", transactionID), zap.Error(err))
		return
	}
	s.log.Warn("refunded uncommitted charge", zap.String("transaction_id", transactionID))
}

func (s *Service) loadBooking(ctx context.Context, id int64) (*domain.Booking, int64, error) {
	if id <= 0 {
		return nil, 0, ErrValidation.WithMessage("booking_id is required")
	}
	r := s.store.Repos()
	b, err := r.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, 0, mapBookingErr(err)
	}
	managerID, err := booking.ManagerOf(ctx, r, b.SpaceID)
	if err != nil {
		return nil, 0, err
	}
	return b, managerID, nil
}

func (s *Service) loadPayment(ctx context.Context, id int64) (*domain.Payment, int64, error) {
	r := s.store.Repos()
	p, err := r.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, 0, mapPaymentErr(err)
	}
	b, err := r.Bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return nil, 0, mapBookingErr(err)
	}
	managerID, err := booking.ManagerOf(ctx, r, b.SpaceID)
	if err != nil {
		return nil, 0, err
	}
	return p, managerID, nil
}

func paymentResource(p *domain.Payment, managerID int64) policy.Resource {
	return policy.Resource{Kind: "payment", OwnerID: p.UserID, ManagerID: managerID}
}

func eventFor(status domain.PaymentStatus) string {
	switch status {
	case domain.PaymentCompleted:
		return events.PaymentCompleted
	case domain.PaymentFailed:
		return events.PaymentFailed
	case domain.PaymentRefunded:
		return events.PaymentRefunded
	}
	return ""
}

func declineMessage(reason string) string {
	if reason == "" {
		return "payment was declined"
	}
	return "payment was declined: " + reason
}

func (s *Service) publishPayment(ctx context.Context, name string, p *domain.Payment, b *domain.Booking) {
	payload := booking.Payload(b)
	payload.PaymentID = p.ID
	payload.Amount = p.Amount.StringFixed(2)
	payload.Reason = p.FailureReason

	e, err := events.New(name, p.ID, payload)
	if err != nil {
		s.log.Error("build event", zap.String("event", name), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		s.log.Warn("publish event failed", zap.String("event", name), zap.Int64("payment_id", p.ID), zap.Error(err))
	}
}

func (s *Service) publishBooking(ctx context.Context, b *domain.Booking) {
	if b == nil {
		return
	}
	name := booking.EventFor(b.Status)
	e, err := events.New(name, b.ID, booking.Payload(b))
	if err != nil {
		s.log.Error("build event", zap.String("event", name), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		s.log.Warn("publish event failed", zap.String("event", name), zap.Int64("booking_id", b.ID), zap.Error(err))
	}
}

func mapBookingErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrBookingNotFound
	}
	return apperror.From(err)
}

func mapPaymentErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPaymentNotFound
	}
	return apperror.From(err)
}
