package npc

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/npc-dialogue/pkg/dialogue"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func validDef(id int, name string, x float64) *Definition {
	return &Definition{
		ID:     id,
		Name:   name,
		Model:  "a_f_y_business_02",
		Coords: &Coords{X: x, Y: 2, Z: 3},
		Dialogue: dialogue.Tree{
			"start": {Text: "Hi", Choices: []dialogue.Choice{
				{Label: "Bye", Action: dialogue.ActionClose},
			}},
		},
	}
}

func TestDefinitionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Definition)
		wantErr string
	}{
		{name: "valid", mutate: func(*Definition) {}},
		{
			name:    "missing name",
			mutate:  func(d *Definition) { d.Name = "" },
			wantErr: "missing name",
		},
		{
			name:    "missing model",
			mutate:  func(d *Definition) { d.Model = "" },
			wantErr: "missing model",
		},
		{
			name:    "missing coords",
			mutate:  func(d *Definition) { d.Coords = nil },
			wantErr: "missing coords",
		},
		{
			name:    "missing dialogue",
			mutate:  func(d *Definition) { d.Dialogue = nil },
			wantErr: "missing dialogue",
		},
		{
			name: "malformed action in dialogue",
			mutate: func(d *Definition) {
				d.Dialogue = dialogue.Tree{
					"start": {Text: "Hi", Choices: []dialogue.Choice{
						{Label: "Bad", Action: dialogue.ActionCommand},
					}},
				}
			},
			wantErr: "command action",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDef(1, "mira", 10)
			tt.mutate(def)
			err := def.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCatalogBuild(t *testing.T) {
	c := NewCatalog(testLogger())

	defs := []*Definition{
		validDef(1, "mira", 10),
		validDef(2, "dann", 20),
	}
	require.NoError(t, c.Build(defs))
	assert.Equal(t, 2, c.Count())

	got, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "mira", got.Name)

	entry, ok := c.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "dann", entry.Name)
	assert.True(t, entry.Tree.HasStart())

	_, ok = c.Get(3)
	assert.False(t, ok)
}

func TestCatalogBuildIdempotent(t *testing.T) {
	c := NewCatalog(testLogger())
	require.NoError(t, c.Build([]*Definition{validDef(1, "mira", 10)}))
	require.NoError(t, c.Build([]*Definition{validDef(2, "dann", 20)}))
	assert.Equal(t, 1, c.Count())
}

func TestCatalogBuildDegradesInvalidNPCs(t *testing.T) {
	c := NewCatalog(testLogger())

	bad := validDef(2, "broken", 20)
	bad.Model = ""

	err := c.Build([]*Definition{validDef(1, "mira", 10), bad, validDef(3, "dann", 30)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	// The other NPCs built fine.
	assert.Equal(t, 2, c.Count())
	_, ok := c.Get(2)
	assert.False(t, ok)
}

func TestCatalogBuildRejectsDuplicateIDs(t *testing.T) {
	c := NewCatalog(testLogger())

	err := c.Build([]*Definition{validDef(1, "mira", 10), validDef(1, "imposter", 20)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, c.Count())

	got, _ := c.Get(1)
	assert.Equal(t, "mira", got.Name)
}

func TestCatalogInsertNoSilentOverwrite(t *testing.T) {
	c := NewCatalog(testLogger())
	require.NoError(t, c.Build([]*Definition{validDef(1, "mira", 10)}))

	// Identical content is a tolerated re-insert.
	require.NoError(t, c.Insert(validDef(1, "mira", 10)))
	assert.Equal(t, 1, c.Count())

	// Different content under the same id is refused.
	err := c.Insert(validDef(1, "imposter", 50))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateID)
	got, _ := c.Get(1)
	assert.Equal(t, "mira", got.Name)
}

func TestCatalogCreateDynamic(t *testing.T) {
	c := NewCatalog(testLogger())
	require.NoError(t, c.Build([]*Definition{validDef(1, "mira", 10), validDef(7, "dann", 20)}))

	dyn := validDef(0, "wanderer", 30)
	id, err := c.CreateDynamic(dyn)
	require.NoError(t, err)

	// Dynamic ids sit strictly above every static id.
	assert.Greater(t, id, 7)
	assert.GreaterOrEqual(t, id, 1000)

	second, err := c.CreateDynamic(validDef(0, "stranger", 40))
	require.NoError(t, err)
	assert.Greater(t, second, id)
	assert.Equal(t, 4, c.Count())
}

func TestCatalogCreateDynamicMissingCoords(t *testing.T) {
	c := NewCatalog(testLogger())
	require.NoError(t, c.Build([]*Definition{validDef(1, "mira", 10)}))
	before := c.Count()

	def := validDef(0, "ghost", 0)
	def.Coords = nil

	_, err := c.CreateDynamic(def)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "coords")

	// No partial state was created.
	assert.Equal(t, before, c.Count())
}

func TestCatalogCreateDynamicRequiresStartNode(t *testing.T) {
	c := NewCatalog(testLogger())
	require.NoError(t, c.Build(nil))

	def := validDef(0, "ghost", 10)
	def.Dialogue = dialogue.Tree{"intro": {Text: "hey"}}

	_, err := c.CreateDynamic(def)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), `"start"`)
	assert.Equal(t, 0, c.Count())
}

func TestCatalogBuildToleratesMissingStart(t *testing.T) {
	// Static entries are checked lazily: a tree without a start node
	// still builds and only fails when a dialogue is opened.
	c := NewCatalog(testLogger())

	def := validDef(1, "husk", 10)
	def.Dialogue = dialogue.Tree{"intro": {Text: "..."}}

	require.NoError(t, c.Build([]*Definition{def}))
	assert.Equal(t, 1, c.Count())

	entry, ok := c.Lookup(1)
	require.True(t, ok)
	assert.False(t, entry.Tree.HasStart())
}

func TestCatalogDuplicateLocationRespawn(t *testing.T) {
	c := NewCatalog(testLogger())
	require.NoError(t, c.Build([]*Definition{validDef(1, "mira", 10)}))

	// A new NPC standing in the same spot replaces the old one.
	replacement := validDef(0, "mira_v2", 10)
	id, err := c.CreateDynamic(replacement)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Count())
	_, ok := c.Get(1)
	assert.False(t, ok)
	got, ok := c.Get(id)
	require.True(t, ok)
	assert.Equal(t, "mira_v2", got.Name)
}

func TestCatalogListOrder(t *testing.T) {
	c := NewCatalog(testLogger())
	require.NoError(t, c.Build([]*Definition{validDef(2, "dann", 10), validDef(1, "mira", 20)}))

	_, err := c.CreateDynamic(validDef(0, "wanderer", 30))
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 3)
	assert.Equal(t, "dann", list[0].Name)
	assert.Equal(t, "mira", list[1].Name)
	assert.Equal(t, "wanderer", list[2].Name)
}
