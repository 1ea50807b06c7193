package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/npc-dialogue/internal/handlers"
	"github.com/jwebster45206/npc-dialogue/pkg/dialogue"
)

func listNPCs(client *http.Client, baseURL string) ([]handlers.NPCSummary, error) {
	resp, err := client.Get(baseURL + "/v1/npcs")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to list NPCs")
	}

	var npcs []handlers.NPCSummary
	if err := json.Unmarshal(body, &npcs); err != nil {
		return nil, fmt.Errorf("failed to parse NPC list response: %w", err)
	}
	return npcs, nil
}

func openDialogue(client *http.Client, baseURL string, npcID int) (*dialogue.NodeView, error) {
	reqBody, err := json.Marshal(handlers.OpenDialogueRequest{NPCID: npcID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/dialogue/open", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to open dialogue")
	}

	var view dialogue.NodeView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("failed to parse dialogue response: %w", err)
	}
	return &view, nil
}

// submitChoice returns the next node view, or nil if the choice closed the
// dialogue.
func submitChoice(client *http.Client, baseURL string, index int) (*dialogue.NodeView, error) {
	reqBody, err := json.Marshal(handlers.ChoiceRequest{Index: index})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/dialogue/choice", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to submit choice")
	}

	// The choice endpoint returns either a node view or a closed marker.
	var closed handlers.ChoiceResponse
	if err := json.Unmarshal(body, &closed); err == nil && closed.Closed {
		return nil, nil
	}

	var view dialogue.NodeView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("failed to parse dialogue response: %w", err)
	}
	return &view, nil
}

func closeDialogue(client *http.Client, baseURL string) error {
	req, err := http.NewRequest(http.MethodPost, baseURL+"/v1/dialogue/close", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return apiError(resp.StatusCode, body, "failed to close dialogue")
	}
	return nil
}

func apiError(status int, body []byte, msg string) error {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("%s: %s", msg, errorResp.Error)
}
