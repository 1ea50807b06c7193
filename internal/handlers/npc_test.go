package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/npc-dialogue/pkg/npc"
)

func newNPCHandler(t *testing.T) (*NPCHandler, *npc.Catalog) {
	t.Helper()
	catalog := testCatalog(t)
	return NewNPCHandler(catalog, testLogger()), catalog
}

func TestNPCHandler_List(t *testing.T) {
	h, _ := newNPCHandler(t)

	rr := doJSON(t, h, http.MethodGet, "/v1/npcs", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var summaries []NPCSummary
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "Mira", summaries[0].Name)
	assert.Equal(t, "Husk", summaries[1].Name)
}

func TestNPCHandler_Get(t *testing.T) {
	h, _ := newNPCHandler(t)

	rr := doJSON(t, h, http.MethodGet, "/v1/npcs/1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var def npc.Definition
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&def))
	assert.Equal(t, "Mira", def.Name)
	assert.True(t, def.Dialogue.HasStart())

	rr = doJSON(t, h, http.MethodGet, "/v1/npcs/42", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/v1/npcs/abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNPCHandler_Create(t *testing.T) {
	h, catalog := newNPCHandler(t)

	body := `{
		"name": "Wanderer",
		"model": "a_m_m_hillbilly_01",
		"coords": {"x": 50, "y": 60, "z": 70},
		"dialogue": {
			"start": {"text": "Hm?", "choices": [{"label": "Bye", "action": "close"}]}
		}
	}`

	rr := doJSON(t, h, http.MethodPost, "/v1/npcs", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp CreateNPCResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.GreaterOrEqual(t, resp.ID, 1000)

	created, ok := catalog.Get(resp.ID)
	require.True(t, ok)
	assert.Equal(t, "Wanderer", created.Name)
}

func TestNPCHandler_CreateMissingCoords(t *testing.T) {
	h, catalog := newNPCHandler(t)
	before := catalog.Count()

	body := `{
		"name": "Ghost",
		"model": "a_m_m_hillbilly_01",
		"dialogue": {
			"start": {"text": "Boo", "choices": [{"label": "Bye", "action": "close"}]}
		}
	}`

	rr := doJSON(t, h, http.MethodPost, "/v1/npcs", body)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errResp))
	assert.Contains(t, errResp.Error, "coords")

	// Catalog unchanged: no partial state.
	assert.Equal(t, before, catalog.Count())
}

func TestNPCHandler_CreateInvalidBody(t *testing.T) {
	h, _ := newNPCHandler(t)

	rr := doJSON(t, h, http.MethodPost, "/v1/npcs", `{bad json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNPCHandler_MethodNotAllowed(t *testing.T) {
	h, _ := newNPCHandler(t)

	rr := doJSON(t, h, http.MethodDelete, "/v1/npcs/1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
