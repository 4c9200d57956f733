package site

import (
	"context"
	"sync"
)

// Event names emitted by a Workspace.
const (
	EventElementsChanged = "elements:changed"
	EventPagesChanged    = "pages:changed"
	EventThemeChanged    = "theme:changed"
	EventHistoryChanged  = "history:changed"
	EventNotice          = "notice"
)

// EventEmitter receives change notifications. Implementations must not block.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Notice is the payload of EventNotice: a short user-facing message.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, string, any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Names returns the recorded event names in order.
func (m *MockEmitter) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Event
	}
	return out
}

// Last returns the most recent event named name.
func (m *MockEmitter) Last(name string) (EmittedEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Events) - 1; i >= 0; i-- {
		if m.Events[i].Event == name {
			return m.Events[i], true
		}
	}
	return EmittedEvent{}, false
}
