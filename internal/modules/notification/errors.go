package notification

import "spacebook/internal/pkg/apperror"

var (
	ErrNotificationNotFound = apperror.New(apperror.KindNotFound, "NOTIFICATION_NOT_FOUND", "notification not found")
	ErrInvalidStatus        = apperror.New(apperror.KindValidation, "INVALID_STATUS", "status must be delivered or read")
	ErrInvalidTransition    = apperror.New(apperror.KindInvalidTransition, "", "notification status change is not allowed")
)
