package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sm-junior0/ndarehe-sub001/internal/metrics"
)

const (
	EventNotice          = "notice"
	EventRecordMutated   = "record_mutated"
	EventExportCompleted = "export_completed"
	EventSettingsSaved   = "settings_saved"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
)

// Rank orders levels for threshold checks.
func (l Level) Rank() int {
	switch l {
	case LevelError:
		return 3
	case LevelWarn:
		return 2
	case LevelSuccess:
		return 1
	default:
		return 0
	}
}

// Notice is an operator-facing message, the console's equivalent of a toast.
type Notice struct {
	Level     Level     `json:"level"`
	Resource  string    `json:"resource,omitempty"`
	RecordID  string    `json:"record_id,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// MutationPayload describes a change the server acknowledged.
type MutationPayload struct {
	Resource string `json:"resource"`
	RecordID string `json:"record_id,omitempty"`
	Action   string `json:"action"`
	Detail   string `json:"detail,omitempty"`
}

type ExportPayload struct {
	Entity string `json:"entity"`
	Format string `json:"format"`
	Path   string `json:"path"`
	Rows   int    `json:"rows"`
}

type SettingsPayload struct {
	Keys []string `json:"keys"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// Publisher is what producers depend on.
type Publisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handlers run synchronously.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// Notify publishes a notice. A nil publisher drops it.
func Notify(p Publisher, n Notice) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	metrics.IncNotice(string(n.Level))
	if p == nil {
		return
	}
	_ = p.PublishJSON(EventNotice, n)
}

// Emit publishes payload under eventType on p, ignoring a nil publisher.
func Emit(p Publisher, eventType string, payload interface{}) {
	if p == nil {
		return
	}
	_ = p.PublishJSON(eventType, payload)
}

func DecodeNotice(event *Event) (Notice, error) {
	var n Notice
	err := json.Unmarshal(event.Payload, &n)
	return n, err
}
