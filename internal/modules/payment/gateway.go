package payment

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

type Charge struct {
	BookingID int64
	Amount    decimal.Decimal
	Currency  string
	Token     string
}

// Outcome of a charge attempt. A decline is not an error.
type Outcome struct {
	Approved      bool
	TransactionID string
	Reason        string
}

// Gateway settles online payments synchronously.
type Gateway interface {
	Charge(ctx context.Context, ch Charge) (Outcome, error)
	Refund(ctx context.Context, transactionID string) error
}

// DeclineToken makes FakeGateway decline. It matches the Stripe test card of
// the same name.
const DeclineToken = "pm_card_chargeDeclined"

// FakeGateway approves every charge except those made with DeclineToken.
type FakeGateway struct {
	seq atomic.Int64

	mu       sync.Mutex
	refunded []string
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

func (g *FakeGateway) Charge(_ context.Context, ch Charge) (Outcome, error) {
	n := g.seq.Add(1)
	if ch.Token == DeclineToken {
		return Outcome{Approved: false, TransactionID: "fake_declined_" + strconv.FormatInt(n, 10), Reason: "card_declined"}, nil
	}
	return Outcome{Approved: true, TransactionID: "fake_" + strconv.FormatInt(n, 10)}, nil
}

func (g *FakeGateway) Refund(_ context.Context, transactionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunded = append(g.refunded, transactionID)
	return nil
}

func (g *FakeGateway) Refunded() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.refunded...)
}
