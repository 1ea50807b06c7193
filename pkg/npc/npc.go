// Package npc holds NPC definitions and the catalog that maps ids to
// dialogue trees.
package npc

import (
	"fmt"

	"github.com/jwebster45206/npc-dialogue/pkg/dialogue"
)

// Coords is a world position plus facing.
type Coords struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Heading float64 `json:"heading,omitempty"`
}

// Blip is the map marker rendered for an NPC.
type Blip struct {
	Sprite int    `json:"sprite"`
	Color  int    `json:"color"`
	Label  string `json:"label,omitempty"`
}

// Definition describes one NPC: where it spawns, how it presents, and the
// dialogue tree it speaks. Definitions are immutable once inserted into
// the catalog; content is never edited in place, only replaced whole.
type Definition struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Model    string        `json:"model"`
	Coords   *Coords       `json:"coords"`
	IdleAnim string        `json:"idle_anim,omitempty"`
	Blip     *Blip         `json:"blip,omitempty"`
	Dialogue dialogue.Tree `json:"dialogue"`
}

// Validate checks the fields required for the NPC to be spawnable and
// talkable. The missing field is named in the error so callers can report
// exactly what to fix. Wrapped errors carry ErrInvalidConfig.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidConfig)
	}
	if d.Model == "" {
		return fmt.Errorf("%w: npc %q missing model", ErrInvalidConfig, d.Name)
	}
	if d.Coords == nil {
		return fmt.Errorf("%w: npc %q missing coords", ErrInvalidConfig, d.Name)
	}
	if d.Dialogue == nil {
		return fmt.Errorf("%w: npc %q missing dialogue", ErrInvalidConfig, d.Name)
	}
	// The presence of the start node is deliberately not checked here:
	// that check is deferred to open time, matching the navigator's
	// ErrMissingStartNode contract. Dynamic creation checks it eagerly.
	if err := d.Dialogue.Validate(); err != nil {
		return fmt.Errorf("%w: npc %q: %v", ErrInvalidConfig, d.Name, err)
	}
	return nil
}

// SameLocation reports whether two definitions occupy the same spot.
// Headings are irrelevant: two NPCs cannot stand in one place regardless
// of where they face.
func (d *Definition) SameLocation(other *Definition) bool {
	if d.Coords == nil || other.Coords == nil {
		return false
	}
	return d.Coords.X == other.Coords.X &&
		d.Coords.Y == other.Coords.Y &&
		d.Coords.Z == other.Coords.Z
}
