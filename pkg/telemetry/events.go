package telemetry

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a change or anomaly observed while editing the registry.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type is the event type.
	Type string `json:"type"`

	// Source identifies where the event originated.
	Source string `json:"source"`

	// InvocationID ties the event to one CLI invocation.
	InvocationID string `json:"invocation_id,omitempty"`

	// Scope is the attribute scope, if applicable.
	Scope string `json:"scope,omitempty"`

	// Module is the affected module, if applicable.
	Module string `json:"module,omitempty"`

	// Attribute is the affected attribute, if applicable.
	Attribute string `json:"attribute,omitempty"`

	// Message is a human-readable event message.
	Message string `json:"message"`

	// Level is the event severity level (info, warning, error).
	Level string `json:"level"`

	// Data contains additional event-specific data.
	Data map[string]interface{} `json:"data,omitempty"`
}

// Event types.
const (
	EventTypeAttributeChanged = "attribute.changed"
	EventTypeProfileImported  = "profile.imported"
	EventTypeCorruptValue     = "value.corrupt"
)

// EventLevel constants for event severity.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// EventSubscriber is a function that handles events.
type EventSubscriber func(event Event)

// EventFilter determines if an event should be processed.
type EventFilter func(event Event) bool

// EventPublisher delivers events synchronously to its subscribers. A nil
// publisher discards everything.
type EventPublisher struct {
	invocationID string
	subscribers  []subscriberEntry
	mu           sync.RWMutex
}

type subscriberEntry struct {
	subscriber EventSubscriber
	filter     EventFilter
}

// NewEventPublisher creates a publisher stamping events with invocationID.
func NewEventPublisher(invocationID string) *EventPublisher {
	return &EventPublisher{invocationID: invocationID}
}

// Publish publishes an event to all subscribers.
func (ep *EventPublisher) Publish(event Event) {
	if ep == nil {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.InvocationID == "" {
		event.InvocationID = ep.invocationID
	}

	ep.mu.RLock()
	defer ep.mu.RUnlock()
	for _, entry := range ep.subscribers {
		if entry.filter != nil && !entry.filter(event) {
			continue
		}
		entry.subscriber(event)
	}
}

// PublishAttributeChanged publishes an attribute write.
func (ep *EventPublisher) PublishAttributeChanged(scope, module, attribute, oldValue, newValue string) {
	ep.Publish(Event{
		Type:      EventTypeAttributeChanged,
		Source:    "resolver",
		Scope:     scope,
		Module:    module,
		Attribute: attribute,
		Message:   fmt.Sprintf("%s changed from %s to %s", attribute, oldValue, newValue),
		Level:     EventLevelInfo,
		Data: map[string]interface{}{
			"old": oldValue,
			"new": newValue,
		},
	})
}

// PublishProfileImported publishes the outcome of a profile import.
func (ep *EventPublisher) PublishProfileImported(module string, applied int) {
	ep.Publish(Event{
		Type:    EventTypeProfileImported,
		Source:  "resolver",
		Scope:   "module",
		Module:  module,
		Message: fmt.Sprintf("Imported %d settings into %s", applied, module),
		Level:   EventLevelInfo,
		Data: map[string]interface{}{
			"applied": applied,
		},
	})
}

// PublishCorruptValue publishes a stored value the schema cannot decode.
func (ep *EventPublisher) PublishCorruptValue(scope, module, attribute, reason string) {
	ep.Publish(Event{
		Type:      EventTypeCorruptValue,
		Source:    "resolver",
		Scope:     scope,
		Module:    module,
		Attribute: attribute,
		Message:   reason,
		Level:     EventLevelWarning,
	})
}

// Subscribe registers a subscriber, optionally behind a filter.
func (ep *EventPublisher) Subscribe(subscriber EventSubscriber, filter EventFilter) {
	if ep == nil {
		return
	}
	ep.mu.Lock()
	defer ep.mu.Unlock()
	ep.subscribers = append(ep.subscribers, subscriberEntry{
		subscriber: subscriber,
		filter:     filter,
	})
}

// FilterByLevel creates a filter that only allows events at or above the specified level.
func FilterByLevel(minLevel string) EventFilter {
	levels := map[string]int{
		EventLevelInfo:    0,
		EventLevelWarning: 1,
		EventLevelError:   2,
	}
	minLevelValue := levels[minLevel]
	return func(event Event) bool {
		return levels[event.Level] >= minLevelValue
	}
}

// FilterByType creates a filter that only allows events of the specified types.
func FilterByType(types ...string) EventFilter {
	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}
	return func(event Event) bool {
		return typeSet[event.Type]
	}
}

// LogSubscriber returns a subscriber that writes events to logger.
func LogSubscriber(logger *Logger) EventSubscriber {
	return func(event Event) {
		z := logger.Zerolog()
		e := z.Info()
		switch event.Level {
		case EventLevelWarning:
			e = z.Warn()
		case EventLevelError:
			e = z.Error()
		}
		e.Str("event_id", event.ID).
			Str("event_type", event.Type).
			Str("module", event.Module).
			Str("attribute", event.Attribute).
			Msg(event.Message)
	}
}
