package dialogue

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultDispatchDelay is how long the dispatcher waits after session
// teardown before firing an action. One UI-teardown frame is enough for
// the presentation layer to settle before a follow-up flow (which may open
// another dialogue) begins.
const DefaultDispatchDelay = 150 * time.Millisecond

// fireTimeout bounds the execution of a single deferred action.
const fireTimeout = 5 * time.Second

// LocalPublisher delivers an event inside this process.
type LocalPublisher interface {
	PublishLocal(ctx context.Context, event string, args map[string]any) error
}

// RemotePublisher delivers an event to remote consumers.
type RemotePublisher interface {
	PublishRemote(ctx context.Context, event string, args map[string]any) error
}

// CommandRunner executes a named command.
type CommandRunner interface {
	Run(ctx context.Context, command string, args map[string]any) error
}

// Dispatcher performs the one-shot side effect of a terminal choice.
// Event and command actions fire once on a cancellable timer so that UI
// teardown strictly precedes the deferred effect; close actions need no
// further work beyond what the navigator already performed.
type Dispatcher struct {
	delay    time.Duration
	local    LocalPublisher
	remote   RemotePublisher
	commands CommandRunner
	log      *slog.Logger

	mu      sync.Mutex
	pending *time.Timer
}

// NewDispatcher creates a dispatcher. A non-positive delay falls back to
// DefaultDispatchDelay.
func NewDispatcher(local LocalPublisher, remote RemotePublisher, commands CommandRunner, delay time.Duration, log *slog.Logger) *Dispatcher {
	if delay <= 0 {
		delay = DefaultDispatchDelay
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		delay:    delay,
		local:    local,
		remote:   remote,
		commands: commands,
		log:      log,
	}
}

// Dispatch validates the action and schedules its deferred delivery.
// Malformed actions are rejected before any timer is scheduled. Control
// returns immediately after scheduling.
func (d *Dispatcher) Dispatch(action Action) error {
	if err := action.Validate(); err != nil {
		d.log.Warn("rejected malformed action", "kind", action.Kind, "error", err)
		return err
	}
	if action.Kind == ActionClose {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		// A session ended while the previous session's action was still
		// waiting. The older action loses.
		if d.pending.Stop() {
			d.log.Warn("replacing pending action", "kind", action.Kind, "target", action.Target())
		}
	}
	d.pending = time.AfterFunc(d.delay, func() {
		d.clearPending()
		d.fire(action)
	})
	d.log.Debug("action scheduled",
		"kind", action.Kind, "target", action.Target(), "delay", d.delay)
	return nil
}

// CancelPending stops a scheduled action that has not fired yet. Returns
// true if an action was actually cancelled.
func (d *Dispatcher) CancelPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return false
	}
	stopped := d.pending.Stop()
	d.pending = nil
	return stopped
}

func (d *Dispatcher) clearPending() {
	d.mu.Lock()
	d.pending = nil
	d.mu.Unlock()
}

func (d *Dispatcher) fire(action Action) {
	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	var err error
	switch action.Kind {
	case ActionLocalEvent:
		if d.local != nil {
			err = d.local.PublishLocal(ctx, action.Event, action.Args)
		}
	case ActionRemoteEvent:
		if d.remote != nil {
			err = d.remote.PublishRemote(ctx, action.Event, action.Args)
		}
	case ActionCommand:
		if d.commands != nil {
			err = d.commands.Run(ctx, action.Command, action.Args)
		}
	}

	if err != nil {
		d.log.Error("deferred action failed",
			"kind", action.Kind, "target", action.Target(), "error", err)
		return
	}
	d.log.Info("action dispatched", "kind", action.Kind, "target", action.Target())
}
