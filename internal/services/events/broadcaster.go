// Package events carries the outward event surface of the dialogue core:
// an in-process bus for local events and a redis-backed broadcaster for
// everything remote consumers see.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/npc-dialogue/pkg/dialogue"
)

// Channel is the redis Pub/Sub channel all dialogue events are published
// on. The SSE handler subscribes to it for fan-out.
const Channel = "npc-dialogue:events"

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeNodeChanged     EventType = "dialogue.node_changed"
	EventTypeActionRequested EventType = "dialogue.action_requested"
	EventTypeRemoteEvent     EventType = "dialogue.remote_event"
)

// Event is the envelope published for every dialogue notification.
type Event struct {
	Type      EventType      `json:"type"`
	ID        string         `json:"id"`
	NPCID     int            `json:"npc_id,omitempty"`
	Event     string         `json:"event,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Broadcaster publishes dialogue events to Redis Pub/Sub. It implements
// both dialogue.Notifier (node changed, action requested) and
// dialogue.RemotePublisher (deferred remote events).
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

var _ dialogue.Notifier = (*Broadcaster)(nil)
var _ dialogue.RemotePublisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// NodeChanged publishes a dialogue.node_changed event carrying the NPC
// name, the node text and the ordered choice labels.
func (b *Broadcaster) NodeChanged(ctx context.Context, view dialogue.NodeView) {
	event := Event{
		Type:  EventTypeNodeChanged,
		NPCID: view.NPCID,
		Data: map[string]any{
			"npc_name": view.NPCName,
			"node":     view.NodeKey,
			"text":     view.Text,
			"choices":  view.Choices,
		},
	}
	if err := b.publish(ctx, event); err != nil {
		b.logger.Error("Failed to publish node change", "error", err, "npc_id", view.NPCID)
	}
}

// ActionRequested publishes a dialogue.action_requested event for a
// terminal choice.
func (b *Broadcaster) ActionRequested(ctx context.Context, npcID int, action dialogue.Action) {
	event := Event{
		Type:  EventTypeActionRequested,
		NPCID: npcID,
		Event: action.Target(),
		Data: map[string]any{
			"kind": string(action.Kind),
			"args": action.Args,
		},
	}
	if err := b.publish(ctx, event); err != nil {
		b.logger.Error("Failed to publish action request", "error", err, "npc_id", npcID)
	}
}

// PublishRemote delivers a dispatched remote event. The args payload is
// forwarded verbatim.
func (b *Broadcaster) PublishRemote(ctx context.Context, name string, args map[string]any) error {
	return b.publish(ctx, Event{
		Type:  EventTypeRemoteEvent,
		Event: name,
		Data:  args,
	})
}

func (b *Broadcaster) publish(ctx context.Context, event Event) error {
	event.ID = uuid.New().String()
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, Channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", Channel,
		"event_type", event.Type,
		"event", event.Event,
	)
	return nil
}
