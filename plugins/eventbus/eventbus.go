// Package eventbus provides a simple publish/subscribe event bus. Plugins and
// components can optionally use this to communicate with each other.
package eventbus

import (
	"context"
)

// Constant name for identifying the eventbus plugin.
const PluginName = "eventbus"

// Handler is the function type for event subscribers. Handlers should assume
// that they may be called multiple times concurrently.
type Handler func(ctx context.Context, msg *Message) error

// Plugin registers an eventbus for use by other plugins.
func Plugin(eb EventBus) *EventBusPlugin {
	return &EventBusPlugin{
		EventBus: eb,
	}
}

// EventBusPlugin provides access to an event bus for plugins and components to
// communicate with each other.
type EventBusPlugin struct {
	EventBus
}

// From openproject.Plugin.
func (p *EventBusPlugin) Name() string {
	return PluginName
}

// EventBus provides a simple publish/subscribe interface for publishing and
// subscribing to events.
type EventBus interface {
	// Subscribe to a topic. The handler will be called for every message
	// published to the topic. Depending on the implementation errors may be
	// logged or retried.
	Subscribe(topic string, handler Handler)

	// SubscribeQueue registers a handler in a queue group. Each message
	// enqueued to the topic is delivered to exactly one queue subscriber.
	SubscribeQueue(topic string, handler Handler)

	// Publish a message to all subscribers of the topic.
	Publish(topic string, data any)

	// Enqueue a message for one queue subscriber of the topic.
	Enqueue(topic string, data any)

	// Shutdown stops accepting new work and waits for in-flight handlers.
	Shutdown(ctx context.Context) error

	// Wait blocks until all pending messages have been processed. Callers
	// should ensure publishers are stopped first, the bus won't reject new
	// events.
	Wait(ctx context.Context) error
}

// Message is the envelope delivered to handlers.
type Message struct {
	ID      string
	Topic   string
	Data    any
	Attempt int
}

// NewMessage constructs a message for delivery. Primarily useful for bus
// implementations and tests.
func NewMessage(id, topic string, data any) *Message {
	return &Message{
		ID:      id,
		Topic:   topic,
		Data:    data,
		Attempt: 1,
	}
}
