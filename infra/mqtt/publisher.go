package mqtt

import (
	"context"
	"fmt"
	"sync"
)

// Message is one payload captured by MockPublisher.
type Message struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// MockPublisher records published messages. It is used in tests.
type MockPublisher struct {
	mu       sync.Mutex
	messages []Message
	// Fail makes every Publish return an error.
	Fail bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish records the message or returns an error if configured to fail.
func (m *MockPublisher) Publish(_ context.Context, topic string, payload []byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	cp := append([]byte(nil), payload...)
	m.messages = append(m.messages, Message{Topic: topic, Payload: cp, Retained: retained})
	return nil
}

// Messages returns a copy of the recorded messages.
func (m *MockPublisher) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}
