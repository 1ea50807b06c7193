// Package storage loads static NPC definitions from the data directory.
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/jwebster45206/npc-dialogue/pkg/npc"
)

// FileStore reads NPC definition files from <dataDir>/npcs/*.json.
type FileStore struct {
	dataDir string
	logger  *slog.Logger
}

// NewFileStore creates a file store rooted at dataDir.
func NewFileStore(dataDir string, logger *slog.Logger) *FileStore {
	if dataDir == "" {
		dataDir = "./data"
	}
	return &FileStore{
		dataDir: dataDir,
		logger:  logger,
	}
}

// LoadNPCs reads every definition file in lexical order so static ids are
// deterministic across restarts. A file that fails to read or parse is
// logged and skipped; it degrades that one NPC, not the whole catalog.
func (s *FileStore) LoadNPCs() ([]*npc.Definition, error) {
	npcsDir := filepath.Join(s.dataDir, "npcs")

	entries, err := os.ReadDir(npcsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read npcs directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var defs []*npc.Definition
	for _, name := range names {
		path := filepath.Join(npcsDir, name)

		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("Failed to read npc file", "path", path, "error", err)
			continue
		}

		var def npc.Definition
		if err := json.Unmarshal(data, &def); err != nil {
			s.logger.Warn("Failed to unmarshal npc file", "path", path, "error", err)
			continue
		}

		defs = append(defs, &def)
	}

	return defs, nil
}
