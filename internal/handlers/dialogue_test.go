package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/npc-dialogue/pkg/dialogue"
	"github.com/jwebster45206/npc-dialogue/pkg/npc"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func testCatalog(t *testing.T) *npc.Catalog {
	t.Helper()

	catalog := npc.NewCatalog(testLogger())
	err := catalog.Build([]*npc.Definition{
		{
			ID:     1,
			Name:   "Mira",
			Model:  "a_f_y_business_02",
			Coords: &npc.Coords{X: 1, Y: 2, Z: 3},
			Dialogue: dialogue.Tree{
				"start": {Text: "Hi", Choices: []dialogue.Choice{
					{Label: "Go", Next: "b"},
					{Label: "Bye", Action: dialogue.ActionClose},
				}},
				"b": {Text: "Here", Choices: []dialogue.Choice{
					{Label: "Shop", Action: dialogue.ActionRemoteEvent, EventName: "shop:open"},
				}},
			},
		},
		{
			// No start node: builds fine, fails at open time.
			ID:     2,
			Name:   "Husk",
			Model:  "s_m_y_cop_01",
			Coords: &npc.Coords{X: 4, Y: 5, Z: 6},
			Dialogue: dialogue.Tree{
				"intro": {Text: "..."},
			},
		},
	})
	require.NoError(t, err)
	return catalog
}

func newDialogueHandler(t *testing.T) (*DialogueHandler, *dialogue.Navigator) {
	t.Helper()

	log := testLogger()
	dispatcher := dialogue.NewDispatcher(nil, nil, nil, 5*time.Millisecond, log)
	nav := dialogue.NewNavigator(testCatalog(t), nil, nil, dispatcher, log)
	return NewDialogueHandler(nav, log), nav
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestDialogueHandler_OpenAndChoose(t *testing.T) {
	h, _ := newDialogueHandler(t)

	rr := doJSON(t, h, http.MethodPost, "/v1/dialogue/open", `{"npc_id":1}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var view dialogue.NodeView
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&view))
	assert.Equal(t, "Hi", view.Text)
	assert.Equal(t, []string{"Go", "Bye"}, view.Choices)

	rr = doJSON(t, h, http.MethodPost, "/v1/dialogue/choice", `{"index":0}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&view))
	assert.Equal(t, "b", view.NodeKey)

	rr = doJSON(t, h, http.MethodGet, "/v1/dialogue", "")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestDialogueHandler_TerminalChoiceReportsClosed(t *testing.T) {
	h, _ := newDialogueHandler(t)

	rr := doJSON(t, h, http.MethodPost, "/v1/dialogue/open", `{"npc_id":1}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, h, http.MethodPost, "/v1/dialogue/choice", `{"index":1}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp ChoiceResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Closed)

	// The session is gone.
	rr = doJSON(t, h, http.MethodGet, "/v1/dialogue", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDialogueHandler_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(h *DialogueHandler)
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{
			name:           "open unknown npc",
			method:         http.MethodPost,
			path:           "/v1/dialogue/open",
			body:           `{"npc_id":99}`,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "open npc without start node",
			method:         http.MethodPost,
			path:           "/v1/dialogue/open",
			body:           `{"npc_id":2}`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "open with invalid body",
			method:         http.MethodPost,
			path:           "/v1/dialogue/open",
			body:           `{bad json}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "choice without session",
			method:         http.MethodPost,
			path:           "/v1/dialogue/choice",
			body:           `{"index":0}`,
			expectedStatus: http.StatusConflict,
		},
		{
			name: "choice index out of range",
			setup: func(h *DialogueHandler) {
				doJSON(t, h, http.MethodPost, "/v1/dialogue/open", `{"npc_id":1}`)
			},
			method:         http.MethodPost,
			path:           "/v1/dialogue/choice",
			body:           `{"index":9}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "current without session",
			method:         http.MethodGet,
			path:           "/v1/dialogue",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unsupported method",
			method:         http.MethodDelete,
			path:           "/v1/dialogue/open",
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newDialogueHandler(t)
			if tt.setup != nil {
				tt.setup(h)
			}

			rr := doJSON(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
		})
	}
}

func TestDialogueHandler_CloseIdempotent(t *testing.T) {
	h, _ := newDialogueHandler(t)

	// Close with nothing open succeeds quietly.
	rr := doJSON(t, h, http.MethodPost, "/v1/dialogue/close", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	doJSON(t, h, http.MethodPost, "/v1/dialogue/open", `{"npc_id":1}`)
	rr = doJSON(t, h, http.MethodPost, "/v1/dialogue/close", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, h, http.MethodPost, "/v1/dialogue/close", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestDialogueHandler_SecondOpenIsNoOp(t *testing.T) {
	h, nav := newDialogueHandler(t)

	rr := doJSON(t, h, http.MethodPost, "/v1/dialogue/open", `{"npc_id":1}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, h, http.MethodPost, "/v1/dialogue/open", `{"npc_id":1}`)
	require.Equal(t, http.StatusOK, rr.Code)

	view, open := nav.Current()
	require.True(t, open)
	assert.Equal(t, 1, view.NPCID)
	assert.Equal(t, dialogue.StartKey, view.NodeKey)
}
