package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"spacebook/internal/domain"
	"spacebook/internal/pkg/apperror"
	"spacebook/internal/pkg/cache"
	"spacebook/internal/pkg/interval"
	"spacebook/internal/policy"
	"spacebook/internal/repository"
)

type Service struct {
	store    repository.UnitOfWork
	policy   policy.Evaluator
	cache    *cache.Cache
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewService(store repository.UnitOfWork, pol policy.Evaluator, c *cache.Cache, cacheTTL time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, policy: pol, cache: c, cacheTTL: cacheTTL, log: log}
}

func cacheKey(spaceID int64, date string) string {
	return fmt.Sprintf("availability:%d:%s", spaceID, date)
}

func (s *Service) List(ctx context.Context, spaceID int64, date string) ([]domain.AvailabilityBlock, error) {
	if spaceID <= 0 {
		return nil, ErrValidation.WithMessage("space_id is required")
	}
	day, err := interval.ParseDate(date)
	if err != nil {
		return nil, ErrValidation.WithMessage("date must be YYYY-MM-DD")
	}
	date = day.Format(interval.DateLayout)

	var cached []domain.AvailabilityBlock
	if found, err := s.cache.Get(ctx, cacheKey(spaceID, date), &cached); err != nil {
		s.log.Warn("availability cache read failed", zap.Error(err))
	} else if found {
		return cached, nil
	}

	r := s.store.Repos()
	if _, err := r.Spaces.GetByID(ctx, spaceID); err != nil {
		return nil, mapErr(err, ErrSpaceNotFound)
	}
	blocks, err := r.Availability.ListBySpaceDate(ctx, spaceID, date)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := s.cache.Set(ctx, cacheKey(spaceID, date), blocks, s.cacheTTL); err != nil {
		s.log.Warn("availability cache write failed", zap.Error(err))
	}
	return blocks, nil
}

func (s *Service) Create(ctx context.Context, subj policy.Subject, req CreateBlockRequest) (*domain.AvailabilityBlock, error) {
	date, iv, err := validateBlock(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeSpace(ctx, subj, req.SpaceID); err != nil {
		return nil, err
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	b := &domain.AvailabilityBlock{
		SpaceID:     req.SpaceID,
		Date:        date,
		StartTime:   iv.Start.String(),
		EndTime:     iv.End.String(),
		IsAvailable: available,
		CreatedBy:   subj.UserID,
	}
	if err := s.store.Repos().Availability.Create(ctx, b); err != nil {
		return nil, mapErr(err, ErrBlockNotFound)
	}
	s.invalidate(ctx, b.SpaceID, b.Date)
	return b, nil
}

func (s *Service) Update(ctx context.Context, subj policy.Subject, id int64, req UpdateBlockRequest) (*domain.AvailabilityBlock, error) {
	r := s.store.Repos()
	b, err := r.Availability.GetByID(ctx, id)
	if err != nil {
		return nil, mapErr(err, ErrBlockNotFound)
	}
	if err := s.authorizeSpace(ctx, subj, b.SpaceID); err != nil {
		return nil, err
	}

	oldDate := b.Date
	if req.Date != nil {
		b.Date = *req.Date
	}
	if req.StartTime != nil {
		b.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		b.EndTime = *req.EndTime
	}
	if req.IsAvailable != nil {
		b.IsAvailable = *req.IsAvailable
	}
	date, iv, err := validateBlock(b.Date, b.StartTime, b.EndTime)
	if err != nil {
		return nil, err
	}
	b.Date, b.StartTime, b.EndTime = date, iv.Start.String(), iv.End.String()

	if err := r.Availability.Update(ctx, b); err != nil {
		return nil, mapErr(err, ErrBlockNotFound)
	}
	s.invalidate(ctx, b.SpaceID, oldDate, b.Date)
	return b, nil
}

func (s *Service) Delete(ctx context.Context, subj policy.Subject, id int64) error {
	r := s.store.Repos()
	b, err := r.Availability.GetByID(ctx, id)
	if err != nil {
		return mapErr(err, ErrBlockNotFound)
	}
	if err := s.authorizeSpace(ctx, subj, b.SpaceID); err != nil {
		return err
	}
	if err := r.Availability.Delete(ctx, id); err != nil {
		return mapErr(err, ErrBlockNotFound)
	}
	s.invalidate(ctx, b.SpaceID, b.Date)
	return nil
}

// HasAvailableOverlap reports whether any block marked available on (space, date)
// overlaps iv. It runs on the caller's repositories so it can join a transaction.
//
// Only partial overlap with a single block is required; full coverage of iv is
// not checked.
func HasAvailableOverlap(ctx context.Context, r repository.Repositories, spaceID int64, date string, iv interval.Interval) (bool, error) {
	blocks, err := r.Availability.ListBySpaceDate(ctx, spaceID, date)
	if err != nil {
		return false, err
	}
	for _, b := range blocks {
		if !b.IsAvailable {
			continue
		}
		biv, err := interval.Parse(b.StartTime, b.EndTime)
		if err != nil {
			continue
		}
		if interval.Overlaps(biv, iv) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) authorizeSpace(ctx context.Context, subj policy.Subject, spaceID int64) error {
	space, err := s.store.Repos().Spaces.GetByID(ctx, spaceID)
	if err != nil {
		return mapErr(err, ErrSpaceNotFound)
	}
	return policy.Authorize(s.policy, subj, policy.SpaceResource(space), policy.ActionManageAvailability)
}

func (s *Service) invalidate(ctx context.Context, spaceID int64, dates ...string) {
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, cacheKey(spaceID, d))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("availability cache invalidation failed", zap.Int64("space_id", spaceID), zap.Error(err))
	}
}

// validateBlock returns the canonical date and interval stored for a block.
func validateBlock(date, start, end string) (string, interval.Interval, error) {
	day, err := interval.ParseDate(date)
	if err != nil {
		return "", interval.Interval{}, ErrValidation.WithMessage("date must be YYYY-MM-DD")
	}
	iv, err := interval.Parse(start, end)
	if err != nil {
		return "", interval.Interval{}, ErrValidation.WithMessage("start_time and end_time must be distinct HH:MM values")
	}
	return day.Format(interval.DateLayout), iv, nil
}

func mapErr(err error, notFound *apperror.Error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrDuplicate.Wrap(err)
	}
	return apperror.From(err)
}
