package dialogue

import "time"

// Session is the mutable runtime state of an open dialogue: which NPC is
// talking and which node is on screen. At most one session exists
// process-wide; the Navigator is its only owner.
type Session struct {
	NPCID    int
	NPCName  string
	NodeKey  string
	Tree     Tree
	OpenedAt time.Time
}

// Current returns the node the session points at.
func (s *Session) Current() (Node, bool) {
	n, ok := s.Tree[s.NodeKey]
	return n, ok
}

// NodeView is the presentation snapshot emitted on every transition: the
// NPC's line and the ordered choice labels, exactly as they should render.
type NodeView struct {
	NPCID   int      `json:"npc_id"`
	NPCName string   `json:"npc_name"`
	NodeKey string   `json:"node"`
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
}

func viewOf(s *Session, n Node) *NodeView {
	labels := make([]string, len(n.Choices))
	for i, c := range n.Choices {
		labels[i] = c.Label
	}
	return &NodeView{
		NPCID:   s.NPCID,
		NPCName: s.NPCName,
		NodeKey: s.NodeKey,
		Text:    n.Text,
		Choices: labels,
	}
}
