// Package notify defines the outbound notification capability. The engine
// depends only on Send semantics, never on a specific SMS or WhatsApp wire
// protocol.
package notify

import "context"

// Transport delivers a message to a phone number. Implementations report
// success or failure only; delivery receipts are not part of the contract.
type Transport interface {
	Send(ctx context.Context, phone, message string) error
}
