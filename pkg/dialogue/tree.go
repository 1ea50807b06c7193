// Package dialogue implements the NPC dialogue core: tree types, the
// single-session navigator, and the deferred action dispatcher.
package dialogue

import (
	"fmt"
	"sort"
)

// StartKey is the enforced entry point of every dialogue tree. Its absence
// is checked when a dialogue opens, not when the tree is loaded.
const StartKey = "start"

// ActionKind identifies the one-shot side effect fired when a choice
// terminates the dialogue.
type ActionKind string

const (
	ActionClose       ActionKind = "close"
	ActionLocalEvent  ActionKind = "local_event"
	ActionRemoteEvent ActionKind = "remote_event"
	ActionCommand     ActionKind = "command"
)

// Valid reports whether k is a known action kind.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionClose, ActionLocalEvent, ActionRemoteEvent, ActionCommand:
		return true
	}
	return false
}

// Choice is a single selectable option on a node. It leads either to
// another node (Next) or to a terminal action. A choice with neither is a
// dead end: legal, displayed, but selecting it only re-displays the node.
type Choice struct {
	Label       string         `json:"label"`
	Next        string         `json:"next,omitempty"`
	Action      ActionKind     `json:"action,omitempty"`
	EventName   string         `json:"event,omitempty"`
	CommandName string         `json:"command,omitempty"`
	Args        map[string]any `json:"args,omitempty"`
}

// Terminal reports whether selecting this choice ends the dialogue.
func (c Choice) Terminal() bool {
	return c.Next == "" && c.Action != ""
}

// Validate checks the action invariant: event actions need an event name,
// command actions need a command name.
func (c Choice) Validate() error {
	if c.Action == "" {
		return nil
	}
	if !c.Action.Valid() {
		return fmt.Errorf("%w: unknown action kind %q", ErrMalformedAction, c.Action)
	}
	switch c.Action {
	case ActionLocalEvent, ActionRemoteEvent:
		if c.EventName == "" {
			return fmt.Errorf("%w: %s action on choice %q has no event name", ErrMalformedAction, c.Action, c.Label)
		}
	case ActionCommand:
		if c.CommandName == "" {
			return fmt.Errorf("%w: command action on choice %q has no command name", ErrMalformedAction, c.Label)
		}
	}
	return nil
}

// ToAction converts a terminal choice into the action handed to the
// dispatcher. Args are forwarded verbatim.
func (c Choice) ToAction() Action {
	return Action{
		Kind:    c.Action,
		Event:   c.EventName,
		Command: c.CommandName,
		Args:    c.Args,
	}
}

// Node is one screen of NPC dialogue: the NPC's line plus an ordered list
// of player-selectable choices. Choice order is the on-screen button order.
type Node struct {
	Text    string   `json:"text"`
	Choices []Choice `json:"choices"`
}

// Tree maps node keys to nodes.
type Tree map[string]Node

// HasStart reports whether the tree contains its entry point.
func (t Tree) HasStart() bool {
	_, ok := t[StartKey]
	return ok
}

// Validate checks every choice's action invariant. It does not reject
// dangling next references; see DanglingRefs for the strict check.
func (t Tree) Validate() error {
	for key, node := range t {
		for i, c := range node.Choices {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("node %q choice %d: %w", key, i, err)
			}
		}
	}
	return nil
}

// DanglingRefs returns every "node/index -> missing key" reference in the
// tree, sorted for stable output. Used by the offline validator; the
// navigator tolerates these at runtime and surfaces ErrDanglingReference
// only when such a choice is actually selected.
func (t Tree) DanglingRefs() []string {
	var refs []string
	for key, node := range t {
		for i, c := range node.Choices {
			if c.Next == "" {
				continue
			}
			if _, ok := t[c.Next]; !ok {
				refs = append(refs, fmt.Sprintf("node %q choice %d -> %q", key, i, c.Next))
			}
		}
	}
	sort.Strings(refs)
	return refs
}

// Action is the dispatch instruction produced by a terminal choice.
type Action struct {
	Kind    ActionKind     `json:"kind"`
	Event   string         `json:"event,omitempty"`
	Command string         `json:"command,omitempty"`
	Args    map[string]any `json:"args,omitempty"`
}

// Target returns the event or command name the action is aimed at.
func (a Action) Target() string {
	if a.Kind == ActionCommand {
		return a.Command
	}
	return a.Event
}

// Validate mirrors Choice.Validate for an already-built action. The
// dispatcher rejects malformed actions before scheduling anything.
func (a Action) Validate() error {
	if !a.Kind.Valid() {
		return fmt.Errorf("%w: unknown action kind %q", ErrMalformedAction, a.Kind)
	}
	switch a.Kind {
	case ActionLocalEvent, ActionRemoteEvent:
		if a.Event == "" {
			return fmt.Errorf("%w: %s action has no event name", ErrMalformedAction, a.Kind)
		}
	case ActionCommand:
		if a.Command == "" {
			return fmt.Errorf("%w: command action has no command name", ErrMalformedAction)
		}
	}
	return nil
}
