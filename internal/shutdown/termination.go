package shutdown

import (
	"strings"
	"sync"
)

// Handler defines a function that handles an unlicensed application
type Handler func(reason string)

// DefaultHandler panics with a descriptive message.
// This will be caught by the recover() in the application's graceful shutdown handler
func DefaultHandler(reason string) {
	panic("LICENSE VALIDATION FAILED: " + reason)
}

// Manager handles termination behavior
type Manager struct {
	handler Handler
	reason  string
	mu      sync.RWMutex
}

// New creates a new termination manager with the default handler
func New() *Manager {
	return &Manager{
		handler: DefaultHandler,
	}
}

// SetHandler updates the termination handler.
// This should be called during application startup, before any validation occurs
func (m *Manager) SetHandler(handler Handler) {
	if handler == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

// Terminate records reasons and invokes the termination handler with them joined
func (m *Manager) Terminate(reasons ...string) {
	reason := strings.Join(reasons, "; ")
	if reason == "" {
		reason = "license is not valid"
	}

	m.mu.Lock()
	m.reason = reason
	handler := m.handler
	m.mu.Unlock()

	handler(reason)
}

// Reason returns the reason of the last termination, if any.
func (m *Manager) Reason() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.reason
}
