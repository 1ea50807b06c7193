package npc

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/jwebster45206/npc-dialogue/pkg/dialogue"
)

// dynamicIDBase is the floor for dynamically allocated ids. Static
// definitions declare small ids in their config files; keeping dynamic ids
// above this base guarantees the two ranges never collide.
const dynamicIDBase = 1000

var (
	// ErrInvalidConfig indicates an NPC definition missing a required field.
	ErrInvalidConfig = errors.New("invalid npc config")

	// ErrDuplicateID indicates an insert that would overwrite an existing
	// id with different content.
	ErrDuplicateID = errors.New("npc id already in use")
)

// Catalog is the process-wide registry of NPCs. Built once from static
// configuration, read-only thereafter except for dynamic creation, which
// only ever adds entries with fresh ids.
type Catalog struct {
	mu      sync.RWMutex
	entries map[int]*Definition
	order   []int
	nextID  int
	built   bool
	log     *slog.Logger
}

// NewCatalog creates an empty catalog.
func NewCatalog(log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{
		entries: make(map[int]*Definition),
		nextID:  dynamicIDBase,
		log:     log,
	}
}

// Build resolves the static definitions into the catalog. It is
// idempotent: only the first call has any effect. A definition that fails
// validation degrades that one NPC (logged and skipped); the rest of the
// catalog still builds. The returned error joins every per-NPC failure so
// operators see them all at once.
func (c *Catalog) Build(defs []*Definition) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.built {
		return nil
	}
	c.built = true

	var errs []error
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			c.log.Error("skipping invalid npc definition", "error", err)
			errs = append(errs, err)
			continue
		}
		if def.ID <= 0 {
			err := fmt.Errorf("%w: npc %q has no positive id", ErrInvalidConfig, def.Name)
			c.log.Error("skipping invalid npc definition", "error", err)
			errs = append(errs, err)
			continue
		}
		if _, exists := c.entries[def.ID]; exists {
			err := fmt.Errorf("%w: id %d declared twice", ErrDuplicateID, def.ID)
			c.log.Error("skipping duplicate npc definition", "error", err)
			errs = append(errs, err)
			continue
		}
		if refs := def.Dialogue.DanglingRefs(); len(refs) > 0 {
			// Tolerated at build time; the navigator surfaces these only
			// if the choice is actually taken.
			c.log.Warn("npc dialogue has dangling references",
				"npc_id", def.ID, "npc_name", def.Name, "refs", refs)
		}
		c.entries[def.ID] = def
		c.order = append(c.order, def.ID)
		if def.ID >= c.nextID {
			c.nextID = def.ID + 1
		}
	}

	c.log.Info("npc catalog built", "count", len(c.order), "rejected", len(errs))
	return errors.Join(errs...)
}

// Get returns the definition for an id.
func (c *Catalog) Get(id int) (*Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.entries[id]
	return def, ok
}

// Lookup implements dialogue.Directory.
func (c *Catalog) Lookup(id int) (dialogue.Entry, bool) {
	def, ok := c.Get(id)
	if !ok {
		return dialogue.Entry{}, false
	}
	return dialogue.Entry{ID: def.ID, Name: def.Name, Tree: def.Dialogue}, true
}

// Count returns the number of registered NPCs.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// List returns definitions in insertion order: static entries first, then
// dynamic entries in creation order.
func (c *Catalog) List() []*Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}

// Insert adds a definition under its declared id. Inserting the identical
// content twice is a no-op; inserting different content under a taken id
// fails with ErrDuplicateID. Callers are responsible for allocating fresh
// ids. An NPC already standing at the same location is removed first
// (removal-and-respawn).
func (c *Catalog) Insert(def *Definition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertLocked(def)
}

func (c *Catalog) insertLocked(def *Definition) error {
	if existing, ok := c.entries[def.ID]; ok {
		if reflect.DeepEqual(existing, def) {
			return nil
		}
		return fmt.Errorf("insert npc %d: %w", def.ID, ErrDuplicateID)
	}

	for _, id := range c.order {
		if c.entries[id].SameLocation(def) {
			c.log.Warn("replacing npc at duplicate location",
				"removed_id", id, "new_id", def.ID)
			c.removeLocked(id)
			break
		}
	}

	c.entries[def.ID] = def
	c.order = append(c.order, def.ID)
	if def.ID >= c.nextID {
		c.nextID = def.ID + 1
	}
	return nil
}

// CreateDynamic validates a definition, allocates a fresh id strictly
// above every existing one, and inserts it. On failure no state is
// created and the error names the missing field.
func (c *Catalog) CreateDynamic(def *Definition) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := def.Validate(); err != nil {
		return 0, err
	}
	// Unlike static builds, a dynamic NPC with no entry point is refused
	// up front: it could never open, so creating it helps nobody.
	if !def.Dialogue.HasStart() {
		return 0, fmt.Errorf("%w: npc %q dialogue has no %q node", ErrInvalidConfig, def.Name, dialogue.StartKey)
	}

	def.ID = c.nextID
	if err := c.insertLocked(def); err != nil {
		return 0, err
	}
	c.log.Info("dynamic npc created", "npc_id", def.ID, "npc_name", def.Name)
	return def.ID, nil
}

func (c *Catalog) removeLocked(id int) {
	delete(c.entries, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
