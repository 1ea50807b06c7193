package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoiceValidate(t *testing.T) {
	tests := []struct {
		name    string
		choice  Choice
		wantErr error
	}{
		{
			name:   "navigation choice needs no target",
			choice: Choice{Label: "Go", Next: "b"},
		},
		{
			name:   "dead end is legal",
			choice: Choice{Label: "Hmm."},
		},
		{
			name:   "close needs no target",
			choice: Choice{Label: "Bye", Action: ActionClose},
		},
		{
			name:   "local event with name",
			choice: Choice{Label: "Do it", Action: ActionLocalEvent, EventName: "thing:done"},
		},
		{
			name:    "local event without name",
			choice:  Choice{Label: "Do it", Action: ActionLocalEvent},
			wantErr: ErrMalformedAction,
		},
		{
			name:    "remote event without name",
			choice:  Choice{Label: "Shop", Action: ActionRemoteEvent},
			wantErr: ErrMalformedAction,
		},
		{
			name:   "command with name",
			choice: Choice{Label: "Mark", Action: ActionCommand, CommandName: "waypoint"},
		},
		{
			name:    "command without name",
			choice:  Choice{Label: "Mark", Action: ActionCommand},
			wantErr: ErrMalformedAction,
		},
		{
			name:    "unknown action kind",
			choice:  Choice{Label: "???", Action: ActionKind("teleport")},
			wantErr: ErrMalformedAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.choice.Validate()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTreeValidate(t *testing.T) {
	good := Tree{
		"start": {Text: "Hi", Choices: []Choice{{Label: "Bye", Action: ActionClose}}},
	}
	assert.NoError(t, good.Validate())
	assert.True(t, good.HasStart())

	bad := Tree{
		"start": {Text: "Hi", Choices: []Choice{{Label: "Shop", Action: ActionRemoteEvent}}},
	}
	err := bad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedAction)

	noStart := Tree{"intro": {Text: "Hi"}}
	assert.False(t, noStart.HasStart())
}

func TestTreeDanglingRefs(t *testing.T) {
	tree := Tree{
		"start": {Text: "Hi", Choices: []Choice{
			{Label: "Go", Next: "b"},
			{Label: "Nowhere", Next: "missing"},
		}},
		"b": {Text: "Here", Choices: []Choice{{Label: "Back", Next: "start"}}},
	}

	refs := tree.DanglingRefs()
	require.Len(t, refs, 1)
	assert.Contains(t, refs[0], `"missing"`)

	assert.Empty(t, Tree{"start": {Text: "Hi"}}.DanglingRefs())
}

func TestActionTarget(t *testing.T) {
	assert.Equal(t, "shop:open", Action{Kind: ActionRemoteEvent, Event: "shop:open"}.Target())
	assert.Equal(t, "waypoint", Action{Kind: ActionCommand, Command: "waypoint"}.Target())
}
