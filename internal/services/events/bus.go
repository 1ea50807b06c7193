package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jwebster45206/npc-dialogue/pkg/dialogue"
)

// Handler consumes a local event's payload.
type Handler func(ctx context.Context, args map[string]any)

// Bus is the in-process delivery target for local_event actions.
// Subscribers run synchronously in registration order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

var _ dialogue.LocalPublisher = (*Bus)(nil)

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event name.
func (b *Bus) Subscribe(event string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], h)
}

// PublishLocal delivers an event to every subscriber. An event nobody
// listens to is an error: local events exist to trigger in-process flows,
// and a missing subscriber means a misconfigured action.
func (b *Bus) PublishLocal(ctx context.Context, event string, args map[string]any) error {
	b.mu.RLock()
	handlers := b.handlers[event]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscriber for local event %q", event)
	}
	for _, h := range handlers {
		h(ctx, args)
	}
	b.logger.Debug("Local event delivered", "event", event, "subscribers", len(handlers))
	return nil
}
