package domain

import "time"

// HistoryEntry records one step of a session.
// OptionID is empty for the entry created by StartDialogue and for strategic jumps,
// in which case Action names the move that caused the step.
type HistoryEntry struct {
	StageID  string `json:"stage_id"`
	OptionID string `json:"option_id,omitempty"`
	Action   string `json:"action,omitempty"`

	// Critical reports that the chosen option was on the critical path.
	Critical bool `json:"critical,omitempty"`

	// CriticalOffered reports that the stage offered at least one critical-path option.
	CriticalOffered bool `json:"critical_offered,omitempty"`
}

// Grade summarises how well a conversation followed its critical path.
type Grade string

const (
	GradeExcellent   Grade = "excellent"
	GradeGood        Grade = "good"
	GradeNeedsReview Grade = "needs-review"
)

// GradeHistory grades a history by the share of offered critical-path choices taken.
func GradeHistory(history []HistoryEntry) Grade {
	var offered, taken int
	for _, h := range history {
		if h.CriticalOffered {
			offered++
			if h.Critical {
				taken++
			}
		}
	}
	switch {
	case taken == offered:
		return GradeExcellent
	case taken*2 >= offered:
		return GradeGood
	default:
		return GradeNeedsReview
	}
}

// StageOverlay holds strategic-action rewrites of the live stage.
// It applies only while the session is still on StageID.
type StageOverlay struct {
	StageID string `json:"stage_id"`
	Action  string `json:"action,omitempty"`

	// Text replaces the displayed stage text when non-empty.
	Text string `json:"text,omitempty"`

	// Options replace the visible option list when non-nil.
	Options []Option `json:"options,omitempty"`
}

// Session represents the current snapshot of one active conversation.
type Session struct {
	// GraphID is the identifier of the active graph.
	GraphID string `json:"graph_id"`

	// CurrentStageID is the identifier of the stage being shown.
	CurrentStageID string `json:"current_stage_id"`

	// History is append-only while the session is active.
	History []HistoryEntry `json:"history"`

	Overlay *StageOverlay `json:"overlay,omitempty"`
}

// NewSession creates a clean session positioned on the start stage.
func NewSession(graphID, startStageID string) *Session {
	return &Session{
		GraphID:        graphID,
		CurrentStageID: startStageID,
		History:        []HistoryEntry{{StageID: startStageID}},
	}
}

// ActiveOverlay returns the overlay if it belongs to the current stage.
func (s *Session) ActiveOverlay() *StageOverlay {
	if s == nil || s.Overlay == nil || s.Overlay.StageID != s.CurrentStageID {
		return nil
	}
	return s.Overlay
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	next := *s
	next.History = append([]HistoryEntry(nil), s.History...)
	if s.Overlay != nil {
		overlay := *s.Overlay
		overlay.Options = CloneOptions(s.Overlay.Options)
		next.Overlay = &overlay
	}
	return &next
}

// ResourceState is the serialisable state of the resource ledger.
type ResourceState struct {
	Insight  int `json:"insight"`
	Momentum int `json:"momentum"`
}

// KnowledgeState is the serialisable state of the knowledge ledger.
type KnowledgeState struct {
	Discovered []string          `json:"discovered,omitempty"`
	Mastery    map[string]int    `json:"mastery,omitempty"`
	Domains    map[string]string `json:"domains,omitempty"`
}

// Snapshot captures everything the engine owns, for the host's save system.
type Snapshot struct {
	ID            string         `json:"id"`
	Session       *Session       `json:"session,omitempty"`
	Resources     ResourceState  `json:"resources"`
	Knowledge     KnowledgeState `json:"knowledge"`
	Relationships map[string]int `json:"relationships,omitempty"`
	SavedAt       time.Time      `json:"saved_at"`

	// Sealed carries an encrypted copy of the snapshot written by persistence middleware.
	// All other fields except ID and SavedAt are empty when it is set.
	Sealed []byte `json:"sealed,omitempty"`
}
