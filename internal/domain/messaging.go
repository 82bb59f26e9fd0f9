package domain

import "context"

// Messenger defines the contract for sending a templated text message over a
// WhatsApp-class transport (infrastructure port). Send returns the transport's
// message SID. No automatic retries: each call is one billable send attempt.
type Messenger interface {
	Send(ctx context.Context, toPhone, body string) (sid string, err error)
}
