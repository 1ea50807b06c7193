package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/npc-dialogue/pkg/dialogue"
	"github.com/jwebster45206/npc-dialogue/pkg/npc"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <npc.json> [npc.json ...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &NPCValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

type NPCValidator struct {
	errors []string
}

func (v *NPCValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("npc file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidNPCFilename(nameWithoutExt) {
		return fmt.Errorf("npc filename '%s' must be lowercase snake_case (e.g., town_merchant.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var def npc.Definition
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&def); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.validateDefinition(&def)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n  %s", filename, strings.Join(v.errors, "\n  "))
	}

	return nil
}

func (v *NPCValidator) validateDefinition(def *npc.Definition) {
	if def.ID <= 0 {
		v.errors = append(v.errors, "id must be a positive integer")
	}
	if err := def.Validate(); err != nil {
		v.errors = append(v.errors, err.Error())
	}
	if def.Dialogue == nil {
		return
	}

	// The runtime tolerates dangling references; the validator does not.
	for _, ref := range def.Dialogue.DanglingRefs() {
		v.errors = append(v.errors, fmt.Sprintf("dangling reference: %s", ref))
	}

	for key, node := range def.Dialogue {
		if node.Text == "" && key == dialogue.StartKey {
			v.errors = append(v.errors, "start node has no text")
		}
		if len(node.Choices) == 0 {
			v.errors = append(v.errors, fmt.Sprintf("node %q has no choices; the dialogue cannot advance past it", key))
		}
		for i, c := range node.Choices {
			if c.Label == "" {
				v.errors = append(v.errors, fmt.Sprintf("node %q choice %d has no label", key, i))
			}
			if c.Next != "" && c.Action != "" {
				v.errors = append(v.errors, fmt.Sprintf("node %q choice %d sets both next and action", key, i))
			}
		}
	}
}

var npcFilenamePattern = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

func isValidNPCFilename(name string) bool {
	return npcFilenamePattern.MatchString(name)
}
