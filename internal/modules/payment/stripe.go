package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway confirms a PaymentIntent in one call.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

func (g *StripeGateway) Charge(ctx context.Context, ch Charge) (Outcome, error) {
	if strings.TrimSpace(ch.Token) == "" {
		return Outcome{Approved: false, Reason: "payment_token is required"}, nil
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(ch.Amount.Shift(2).Round(0).IntPart()),
		Currency:           stripe.String(strings.ToLower(ch.Currency)),
		PaymentMethod:      stripe.String(ch.Token),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
	}
	params.Context = ctx
	params.AddMetadata("booking_id", strconv.FormatInt(ch.BookingID, 10))
	params.SetIdempotencyKey(fmt.Sprintf("booking-%d-%s", ch.BookingID, ch.Token))

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.Type == stripe.ErrorTypeCard {
			out := Outcome{Approved: false, Reason: string(se.Code)}
			if se.PaymentIntent != nil {
				out.TransactionID = se.PaymentIntent.ID
			}
			if se.Msg != "" {
				out.Reason = se.Msg
			}
			return out, nil
		}
		return Outcome{}, fmt.Errorf("stripe payment intent: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return Outcome{Approved: false, TransactionID: pi.ID, Reason: "payment intent " + string(pi.Status)}, nil
	}
	return Outcome{Approved: true, TransactionID: pi.ID}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, transactionID string) error {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(transactionID)}
	params.Context = ctx
	if _, err := g.api.Refunds.New(params); err != nil {
		return fmt.Errorf("stripe refund: %w", err)
	}
	return nil
}
