package auth

import "spacebook/internal/pkg/apperror"

var (
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "INVALID_CREDENTIALS", "email or password is incorrect")
	ErrUserNotFound       = apperror.New(apperror.KindNotFound, "USER_NOT_FOUND", "user not found")
)
