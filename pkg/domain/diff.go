package domain

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	CurrentStageID *string `json:"current_stage_id,omitempty"`

	// Ended is set when the session went from active to idle.
	Ended bool `json:"ended,omitempty"`

	InsightChange  int `json:"insight_change,omitempty"`
	MomentumChange int `json:"momentum_change,omitempty"`

	// Discovered lists concepts discovered since the old snapshot.
	Discovered []string `json:"discovered,omitempty"`

	// Relationships contains only mentors whose value changed (delta, not absolute).
	Relationships map[string]int `json:"relationships,omitempty"`

	// History contains entries appended since the old snapshot.
	History []HistoryEntry `json:"history,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}
	if oldSnap == nil {
		oldSnap = &Snapshot{}
	}

	diff := &SnapshotDiff{
		InsightChange:  newSnap.Resources.Insight - oldSnap.Resources.Insight,
		MomentumChange: newSnap.Resources.Momentum - oldSnap.Resources.Momentum,
	}

	oldStage, newStage := stageOf(oldSnap.Session), stageOf(newSnap.Session)
	if newSnap.Session != nil && oldStage != newStage {
		diff.CurrentStageID = &newStage
	}
	diff.Ended = oldSnap.Session != nil && newSnap.Session == nil

	diff.Discovered = diffDiscovered(oldSnap.Knowledge.Discovered, newSnap.Knowledge.Discovered)
	diff.Relationships = diffRelationships(oldSnap.Relationships, newSnap.Relationships)
	diff.History = diffHistory(oldSnap.Session, newSnap.Session)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func stageOf(s *Session) string {
	if s == nil {
		return ""
	}
	return s.CurrentStageID
}

func diffDiscovered(old, new []string) []string {
	known := make(map[string]bool, len(old))
	for _, c := range old {
		known[c] = true
	}
	var added []string
	for _, c := range new {
		if !known[c] {
			added = append(added, c)
		}
	}
	return added
}

func diffRelationships(old, new map[string]int) map[string]int {
	delta := make(map[string]int)
	for id, v := range new {
		if change := v - old[id]; change != 0 {
			delta[id] = change
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// diffHistory assumes append-only history within the same graph.
// A new session (different graph or shorter history) is sent whole.
func diffHistory(old, new *Session) []HistoryEntry {
	if new == nil || len(new.History) == 0 {
		return nil
	}
	if old == nil || old.GraphID != new.GraphID || len(old.History) > len(new.History) {
		return new.History
	}
	if len(new.History) > len(old.History) {
		return new.History[len(old.History):]
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.CurrentStageID == nil &&
		!d.Ended &&
		d.InsightChange == 0 &&
		d.MomentumChange == 0 &&
		len(d.Discovered) == 0 &&
		len(d.Relationships) == 0 &&
		len(d.History) == 0
}
