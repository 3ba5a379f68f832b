// Package notify provides transport adapters for outbound donor
// notifications: a console transport for development and an MQTT gateway
// transport for production SMS delivery.
package notify

import (
	"context"

	"raktsetu/infra/logger"
)

// ConsoleTransport logs the message instead of sending it. It always
// succeeds and serves local development and demos.
type ConsoleTransport struct {
	log logger.Logger
}

// NewConsoleTransport creates a ConsoleTransport.
func NewConsoleTransport() *ConsoleTransport {
	return &ConsoleTransport{log: logger.New("console-transport")}
}

func (t *ConsoleTransport) Send(_ context.Context, phone, message string) error {
	t.log.Infof("SMS to %s: %s", phone, message)
	return nil
}
