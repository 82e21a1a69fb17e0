package booking

import "spacebook/internal/pkg/apperror"

var (
	ErrValidation        = apperror.Validation("invalid booking request")
	ErrInvalidStatus     = apperror.New(apperror.KindValidation, "INVALID_STATUS", "unknown booking status")
	ErrSpaceNotFound     = apperror.New(apperror.KindNotFound, "SPACE_NOT_FOUND", "space not found")
	ErrBookingNotFound   = apperror.New(apperror.KindNotFound, "BOOKING_NOT_FOUND", "booking not found")
	ErrUnavailable       = apperror.New(apperror.KindConflict, "SLOT_UNAVAILABLE", "space is not available for the selected time")
	ErrOverlap           = apperror.New(apperror.KindConflict, "BOOKING_OVERLAP", "space is already booked for the selected time")
	ErrInvalidTransition = apperror.New(apperror.KindInvalidTransition, "", "booking status change is not allowed")
	ErrNotDeletable      = apperror.New(apperror.KindConflict, "BOOKING_NOT_DELETABLE", "only pending or cancelled bookings can be deleted")
	ErrHasPayments       = apperror.New(apperror.KindConflict, "BOOKING_HAS_PAYMENTS", "bookings with payment records cannot be deleted")
)
