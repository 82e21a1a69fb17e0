// Package catalog exposes read-only lookups of locations and their spaces so
// clients can find what to book. Catalog maintenance happens elsewhere.
package catalog

import (
	"context"
	"errors"

	"spacebook/internal/domain"
	"spacebook/internal/pkg/apperror"
	"spacebook/internal/repository"
)

type Service struct {
	spaces repository.SpaceStore
}

func NewService(spaces repository.SpaceStore) *Service {
	return &Service{spaces: spaces}
}

func (s *Service) GetSpace(ctx context.Context, id int64) (*domain.Space, error) {
	sp, err := s.spaces.GetByID(ctx, id)
	if err != nil {
		return nil, mapErr(err, ErrSpaceNotFound)
	}
	return sp, nil
}

// ListSpaces returns the active spaces of a location.
func (s *Service) ListSpaces(ctx context.Context, locationID int64) (*domain.Location, []domain.Space, error) {
	loc, err := s.spaces.GetLocation(ctx, locationID)
	if err != nil {
		return nil, nil, mapErr(err, ErrLocationNotFound)
	}
	list, err := s.spaces.ListByLocation(ctx, locationID, true)
	if err != nil {
		return nil, nil, apperror.Internal(err)
	}
	return loc, list, nil
}

func mapErr(err error, notFound *apperror.Error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return apperror.Internal(err)
}
