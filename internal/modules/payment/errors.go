package payment

import "spacebook/internal/pkg/apperror"

var (
	ErrValidation        = apperror.Validation("invalid payment request")
	ErrInvalidStatus     = apperror.New(apperror.KindValidation, "INVALID_STATUS", "unknown payment status")
	ErrAmountMismatch    = apperror.New(apperror.KindValidation, "INVALID_AMOUNT", "amount must equal the booking total price")
	ErrBookingNotFound   = apperror.New(apperror.KindNotFound, "BOOKING_NOT_FOUND", "booking not found")
	ErrPaymentNotFound   = apperror.New(apperror.KindNotFound, "PAYMENT_NOT_FOUND", "payment not found")
	ErrDuplicate         = apperror.New(apperror.KindConflict, "PAYMENT_EXISTS", "booking already has a pending or completed payment")
	ErrNotPayable        = apperror.New(apperror.KindConflict, "BOOKING_NOT_PAYABLE", "only pending bookings can be paid")
	ErrInvalidTransition = apperror.New(apperror.KindInvalidTransition, "", "payment status change is not allowed")
	ErrDeclined          = apperror.New(apperror.KindPaymentDeclined, "", "payment was declined")
	ErrGateway           = apperror.New(apperror.KindInternal, "GATEWAY_ERROR", "payment gateway is unavailable")
)
