package domain

// Stage is a node in a conversation graph: one beat of dialogue.
type Stage struct {
	ID        string   `json:"id" yaml:"id" mapstructure:"id"`
	SpeakerID string   `json:"speaker_id" yaml:"speaker_id" mapstructure:"speaker_id"`
	Text      string   `json:"text" yaml:"text" mapstructure:"text"`
	Options   []Option `json:"options" yaml:"options" mapstructure:"options"`

	// TangentStageID is an optional alternate stage reachable by a tangent move.
	TangentStageID string `json:"tangent_stage_id,omitempty" yaml:"tangent_stage_id,omitempty" mapstructure:"tangent_stage_id"`

	// BoastStageID is an optional harder stage reachable by the boast action.
	BoastStageID string `json:"boast_stage_id,omitempty" yaml:"boast_stage_id,omitempty" mapstructure:"boast_stage_id"`

	IsConclusion bool `json:"is_conclusion,omitempty" yaml:"is_conclusion,omitempty" mapstructure:"is_conclusion"`
}

// Option returns the option with the given ID.
func (s *Stage) Option(id string) (Option, bool) {
	for _, o := range s.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Continuation returns the first authored transition target of the stage, if any.
func (s *Stage) Continuation() string {
	for _, o := range s.Options {
		if o.NextStageID != "" {
			return o.NextStageID
		}
	}
	return ""
}

// Clone returns a deep copy of the stage.
func (s *Stage) Clone() *Stage {
	if s == nil {
		return nil
	}
	next := *s
	next.Options = CloneOptions(s.Options)
	return &next
}
