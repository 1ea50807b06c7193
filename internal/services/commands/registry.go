// Package commands maps command names to in-process handlers for
// command-kind dialogue actions.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jwebster45206/npc-dialogue/pkg/dialogue"
)

// Handler executes one named command.
type Handler func(ctx context.Context, args map[string]any) error

// Registry holds the known commands.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *slog.Logger
}

var _ dialogue.CommandRunner = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Register adds a command. Registering a taken name fails rather than
// silently replacing the existing handler.
func (r *Registry) Register(name string, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("command %q already registered", name)
	}
	r.handlers[name] = h
	return nil
}

// Run executes a command by name.
func (r *Registry) Run(ctx context.Context, name string, args map[string]any) error {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	if err := h(ctx, args); err != nil {
		return fmt.Errorf("command %q failed: %w", name, err)
	}
	r.logger.Debug("Command executed", "command", name)
	return nil
}
