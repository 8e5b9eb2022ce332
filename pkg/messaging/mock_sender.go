package messaging

import "sync"

// MockMessageSender is an in-memory implementation of MessageSender for
// testing. It records every message it is given.
type MockMessageSender struct {
	mu       sync.Mutex
	messages []*StepMessage
}

// NewMockMessageSender creates a new MockMessageSender.
func NewMockMessageSender() *MockMessageSender {
	return &MockMessageSender{}
}

// SendStepMessage records the message.
func (m *MockMessageSender) SendStepMessage(msg *StepMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns the recorded messages in send order.
func (m *MockMessageSender) Messages() []*StepMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*StepMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Close does nothing.
func (m *MockMessageSender) Close() error {
	return nil
}

// Ensure MockMessageSender implements MessageSender
var _ MessageSender = (*MockMessageSender)(nil)
