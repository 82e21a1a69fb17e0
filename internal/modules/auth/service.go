// Package auth issues access tokens for seeded accounts and lets callers
// register their notification addresses. Account management lives elsewhere.
package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"spacebook/internal/domain"
	"spacebook/internal/pkg/apperror"
	"spacebook/internal/repository"
)

type tokenIssuer interface {
	GenerateToken(userID int64, role string) (string, error)
}

type Service struct {
	users repository.UserStore
	jwt   tokenIssuer
	log   *zap.Logger
}

func NewService(users repository.UserStore, jwt tokenIssuer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{users: users, jwt: jwt, log: log}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", apperror.Internal(err)
	}
	if user.PasswordHash == "" {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Info("login rejected", zap.Int64("user_id", user.ID))
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	return user, token, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (s *Service) UpdateContact(ctx context.Context, userID int64, req UpdateContactRequest) (*domain.User, error) {
	if err := s.users.UpdateContact(ctx, userID, req.Phone, req.FCMToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperror.Internal(err)
	}
	return s.GetCurrentUser(ctx, userID)
}

// HashPassword is the hashing used for stored credentials.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
