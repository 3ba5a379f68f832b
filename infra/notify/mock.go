package notify

import (
	"context"
	"fmt"
	"sync"
)

// MockTransport records sent messages and can be configured to fail for
// specific phone numbers. Intended for tests.
type MockTransport struct {
	mu       sync.Mutex
	Messages map[string]string // phone -> last message
	FailFor  map[string]bool
}

// NewMockTransport creates a new MockTransport.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		Messages: make(map[string]string),
		FailFor:  make(map[string]bool),
	}
}

func (m *MockTransport) Send(_ context.Context, phone, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFor[phone] {
		return fmt.Errorf("send failed")
	}
	m.Messages[phone] = message
	return nil
}

// Sent returns how many messages were delivered.
func (m *MockTransport) Sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}

// Message returns the last message sent to phone.
func (m *MockTransport) Message(phone string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.Messages[phone]
	return msg, ok
}
