package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Entry is the catalog view the navigator needs to open a dialogue.
type Entry struct {
	ID   int
	Name string
	Tree Tree
}

// Directory resolves NPC ids to their dialogue entries. Implemented by
// npc.Catalog.
type Directory interface {
	Lookup(id int) (Entry, bool)
}

// Stage is the presentation collaborator: camera, animation and player
// visibility. All calls are presentation-only and idempotent; the core
// never depends on their outcome.
type Stage interface {
	EngageCamera(npcID int)
	DisengageCamera()
	PlayAnimation(npcID int)
	RestoreAnimation(npcID int)
	SetPlayerVisible(visible bool)
}

// NopStage is a Stage that does nothing. Useful for tests and headless
// deployments.
type NopStage struct{}

func (NopStage) EngageCamera(int)     {}
func (NopStage) DisengageCamera()     {}
func (NopStage) PlayAnimation(int)    {}
func (NopStage) RestoreAnimation(int) {}
func (NopStage) SetPlayerVisible(bool) {}

// Notifier receives the outward event surface: one NodeChanged per
// transition and one ActionRequested per terminal choice.
type Notifier interface {
	NodeChanged(ctx context.Context, view NodeView)
	ActionRequested(ctx context.Context, npcID int, action Action)
}

// NopNotifier is a Notifier that drops everything.
type NopNotifier struct{}

func (NopNotifier) NodeChanged(context.Context, NodeView)       {}
func (NopNotifier) ActionRequested(context.Context, int, Action) {}

// Navigator owns the single dialogue session and computes transitions.
// The mutex exists because the HTTP transport runs handlers concurrently;
// the state machine itself is strictly sequential.
type Navigator struct {
	mu         sync.Mutex
	dir        Directory
	stage      Stage
	notifier   Notifier
	dispatcher *Dispatcher
	log        *slog.Logger

	sess *Session
}

// NewNavigator creates a navigator in the Closed state. Nil stage and
// notifier default to no-ops.
func NewNavigator(dir Directory, stage Stage, notifier Notifier, dispatcher *Dispatcher, log *slog.Logger) *Navigator {
	if stage == nil {
		stage = NopStage{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Navigator{
		dir:        dir,
		stage:      stage,
		notifier:   notifier,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Open starts a dialogue with the given NPC. Opening while a session is
// already active is a no-op that returns the currently displayed node.
// Fails with ErrNPCNotFound or ErrMissingStartNode; on failure no session
// is created and no side effects are issued.
func (n *Navigator) Open(ctx context.Context, npcID int) (*NodeView, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.sess != nil {
		n.log.Debug("dialogue already open, ignoring open",
			"requested_npc", npcID, "open_npc", n.sess.NPCID)
		node, _ := n.sess.Current()
		return viewOf(n.sess, node), nil
	}

	entry, ok := n.dir.Lookup(npcID)
	if !ok {
		return nil, fmt.Errorf("open npc %d: %w", npcID, ErrNPCNotFound)
	}
	node, ok := entry.Tree[StartKey]
	if !ok {
		return nil, fmt.Errorf("open npc %d: %w", npcID, ErrMissingStartNode)
	}

	// A deferred action from a previous session must not fire into the
	// dialogue that is opening now.
	if n.dispatcher != nil && n.dispatcher.CancelPending() {
		n.log.Warn("cancelled stale pending action on open", "npc_id", npcID)
	}

	n.sess = &Session{
		NPCID:    npcID,
		NPCName:  entry.Name,
		NodeKey:  StartKey,
		Tree:     entry.Tree,
		OpenedAt: time.Now(),
	}

	n.stage.EngageCamera(npcID)
	n.stage.PlayAnimation(npcID)
	n.stage.SetPlayerVisible(false)

	view := viewOf(n.sess, node)
	n.notifier.NodeChanged(ctx, *view)
	n.log.Info("dialogue opened", "npc_id", npcID, "npc_name", entry.Name)
	return view, nil
}

// Choose resolves the choice at the given zero-based index on the current
// node. It either transitions to another node (returning its view),
// re-displays the current node for a dead-end choice, or terminates the
// session and hands exactly one action to the dispatcher (returning nil).
func (n *Navigator) Choose(ctx context.Context, index int) (*NodeView, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.sess == nil {
		return nil, ErrNoSession
	}

	node, ok := n.sess.Current()
	if !ok {
		// Session points at a node removed from under it. Cannot happen
		// with catalog-built trees; close cleanly rather than wedge.
		key := n.sess.NodeKey
		n.teardown()
		return nil, fmt.Errorf("current node %q: %w", key, ErrDanglingReference)
	}

	if index < 0 || index >= len(node.Choices) {
		return nil, fmt.Errorf("choice %d of %d: %w", index, len(node.Choices), ErrInvalidIndex)
	}
	choice := node.Choices[index]

	if choice.Next != "" {
		next, ok := n.sess.Tree[choice.Next]
		if !ok {
			// Recoverable: the session stays on the current node.
			return nil, fmt.Errorf("choice %q -> %q: %w", choice.Label, choice.Next, ErrDanglingReference)
		}
		n.sess.NodeKey = choice.Next
		view := viewOf(n.sess, next)
		n.notifier.NodeChanged(ctx, *view)
		n.log.Debug("dialogue transition", "npc_id", n.sess.NPCID, "node", choice.Next)
		return view, nil
	}

	if choice.Action != "" {
		action := choice.ToAction()
		// Validate before tearing anything down: a malformed action
		// leaves the current node displayed unchanged.
		if err := action.Validate(); err != nil {
			return nil, err
		}

		npcID := n.sess.NPCID
		n.teardown()
		n.notifier.ActionRequested(ctx, npcID, action)
		if n.dispatcher != nil {
			if err := n.dispatcher.Dispatch(action); err != nil {
				n.log.Error("action dispatch failed", "npc_id", npcID, "error", err)
				return nil, err
			}
		}
		n.log.Info("dialogue ended by action",
			"npc_id", npcID, "kind", action.Kind, "target", action.Target())
		return nil, nil
	}

	// Dead-end choice: no state change, re-display the same node.
	view := viewOf(n.sess, node)
	n.notifier.NodeChanged(ctx, *view)
	return view, nil
}

// Close ends the current session without dispatching any action. Calling
// it while already closed is a no-op.
func (n *Navigator) Close(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.sess == nil {
		return nil
	}
	npcID := n.sess.NPCID
	n.teardown()
	n.log.Info("dialogue closed", "npc_id", npcID)
	return nil
}

// Current returns the view of the open session's node, if any.
func (n *Navigator) Current() (*NodeView, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.sess == nil {
		return nil, false
	}
	node, ok := n.sess.Current()
	if !ok {
		return nil, false
	}
	return viewOf(n.sess, node), true
}

// teardown destroys the session and issues the stage restore calls.
// Caller holds the mutex.
func (n *Navigator) teardown() {
	npcID := n.sess.NPCID
	n.sess = nil
	n.stage.DisengageCamera()
	n.stage.RestoreAnimation(npcID)
	n.stage.SetPlayerVisible(true)
}
