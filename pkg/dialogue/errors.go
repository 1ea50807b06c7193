package dialogue

import "errors"

// Sentinel errors for the dialogue core. All of them are recoverable at the
// call boundary: the navigator is left either unchanged or cleanly closed.
var (
	// ErrNPCNotFound indicates an unknown NPC id.
	ErrNPCNotFound = errors.New("npc not found")

	// ErrMissingStartNode indicates a dialogue tree without a "start" node.
	ErrMissingStartNode = errors.New("dialogue tree has no start node")

	// ErrInvalidIndex indicates a choice index out of range for the
	// current node.
	ErrInvalidIndex = errors.New("choice index out of range")

	// ErrDanglingReference indicates a choice whose next key does not
	// exist in the tree.
	ErrDanglingReference = errors.New("choice references a missing node")

	// ErrMalformedAction indicates an action missing its required target
	// (event name or command name).
	ErrMalformedAction = errors.New("action is missing its target")

	// ErrNoSession indicates a choose or close-adjacent call while no
	// dialogue session is open.
	ErrNoSession = errors.New("no dialogue session is open")
)
