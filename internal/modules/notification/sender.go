package notification

import (
	"context"
	"errors"
)

// ErrNoRecipient is returned by senders when the address is empty.
var ErrNoRecipient = errors.New("recipient is empty")

// Message is a rendered notification ready for one delivery channel.
type Message struct {
	Recipient string
	Subject   string
	Body      string
	Data      map[string]string
}

// Sender delivers messages over one notification type.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }
