package payment

import "github.com/shopspring/decimal"

type CreatePaymentRequest struct {
	BookingID int64            `json:"booking_id" binding:"required,gt=0" example:"123"`
	Amount    *decimal.Decimal `json:"amount" swaggertype:"string" example:"124.00"`
	Method    string           `json:"method" binding:"required" validate:"oneof=card cash transfer wallet" example:"card"`
	// PaymentToken is the gateway payment method reference (e.g. a Stripe
	// pm_... id). Required for card and wallet.
	PaymentToken string `json:"payment_token" example:"pm_card_visa"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"completed"`
	Reason string `json:"reason" validate:"max=500"`
}

type ListQuery struct {
	BookingID int64 `form:"booking_id"`
}
