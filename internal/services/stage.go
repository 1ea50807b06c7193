package services

import (
	"log/slog"

	"github.com/jwebster45206/npc-dialogue/pkg/dialogue"
)

// LogStage is the headless stage adapter: it records camera, animation and
// visibility calls in the log instead of driving a game client. A hosted
// deployment swaps in an adapter that forwards these to the engine.
type LogStage struct {
	logger *slog.Logger
}

var _ dialogue.Stage = (*LogStage)(nil)

func NewLogStage(logger *slog.Logger) *LogStage {
	return &LogStage{logger: logger}
}

func (s *LogStage) EngageCamera(npcID int) {
	s.logger.Debug("stage: engage camera", "npc_id", npcID)
}

func (s *LogStage) DisengageCamera() {
	s.logger.Debug("stage: disengage camera")
}

func (s *LogStage) PlayAnimation(npcID int) {
	s.logger.Debug("stage: play animation", "npc_id", npcID)
}

func (s *LogStage) RestoreAnimation(npcID int) {
	s.logger.Debug("stage: restore animation", "npc_id", npcID)
}

func (s *LogStage) SetPlayerVisible(visible bool) {
	s.logger.Debug("stage: set player visible", "visible", visible)
}
