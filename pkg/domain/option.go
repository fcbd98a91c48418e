package domain

import "fmt"

// Option is a player-selectable choice on a Stage.
// Numeric effect fields are pointers: nil means "no effect", an explicit zero is still applied.
type Option struct {
	ID          string `json:"id" yaml:"id" mapstructure:"id"`
	Text        string `json:"text" yaml:"text" mapstructure:"text"`
	NextStageID string `json:"next_stage_id,omitempty" yaml:"next_stage_id,omitempty" mapstructure:"next_stage_id"`
	IsEndNode   bool   `json:"is_end_node,omitempty" yaml:"is_end_node,omitempty" mapstructure:"is_end_node"`

	InsightChange      *int           `json:"insight_change,omitempty" yaml:"insight_change,omitempty" mapstructure:"insight_change"`
	MomentumChange     *int           `json:"momentum_change,omitempty" yaml:"momentum_change,omitempty" mapstructure:"momentum_change"`
	RelationshipChange *int           `json:"relationship_change,omitempty" yaml:"relationship_change,omitempty" mapstructure:"relationship_change"`
	KnowledgeGain      *KnowledgeGain `json:"knowledge_gain,omitempty" yaml:"knowledge_gain,omitempty" mapstructure:"knowledge_gain"`
	DiscoversConceptID string         `json:"discovers_concept_id,omitempty" yaml:"discovers_concept_id,omitempty" mapstructure:"discovers_concept_id"`
	MomentumEffect     string         `json:"momentum_effect,omitempty" yaml:"momentum_effect,omitempty" mapstructure:"momentum_effect"`

	// RequiredStarID gates the option on an active star of the knowledge constellation.
	RequiredStarID string `json:"required_star_id,omitempty" yaml:"required_star_id,omitempty" mapstructure:"required_star_id"`

	// IsCriticalPath marks options required for an excellent conclusion grade.
	IsCriticalPath bool     `json:"is_critical_path,omitempty" yaml:"is_critical_path,omitempty" mapstructure:"is_critical_path"`
	Approach       Approach `json:"approach,omitempty" yaml:"approach,omitempty" mapstructure:"approach"`

	// BoastMode is a display flag set by the option enhancer.
	BoastMode bool `json:"boast_mode,omitempty" yaml:"-" mapstructure:"-"`
}

// Effects compiles the authored effect fields into typed effects.
// The order is fixed: insight, momentum change, momentum reset, relationship,
// knowledge gain, concept discovery. A reset therefore always wins over an
// incremental momentum change on the same option.
func (o Option) Effects() []Effect {
	var effects []Effect
	if o.InsightChange != nil {
		effects = append(effects, InsightDelta{Amount: *o.InsightChange})
	}
	if o.MomentumChange != nil {
		effects = append(effects, MomentumDelta{Amount: *o.MomentumChange})
	}
	if o.MomentumEffect == MomentumEffectReset {
		effects = append(effects, MomentumReset{})
	}
	if o.RelationshipChange != nil {
		effects = append(effects, RelationshipDelta{Amount: *o.RelationshipChange})
	}
	if o.KnowledgeGain != nil && o.KnowledgeGain.ConceptID != "" {
		effects = append(effects, *o.KnowledgeGain)
	}
	if o.DiscoversConceptID != "" {
		effects = append(effects, ConceptDiscovery{ConceptID: o.DiscoversConceptID})
	}
	return effects
}

// Validate checks the option's own invariants.
func (o Option) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("option missing ID")
	}
	if o.IsEndNode && o.NextStageID != "" {
		return fmt.Errorf("option %s is an end node but declares next stage %s", o.ID, o.NextStageID)
	}
	if o.MomentumEffect != "" && o.MomentumEffect != MomentumEffectReset {
		return fmt.Errorf("option %s has unsupported momentum effect %q", o.ID, o.MomentumEffect)
	}
	return nil
}

// Clone returns a deep copy of the option.
func (o Option) Clone() Option {
	next := o
	next.InsightChange = cloneInt(o.InsightChange)
	next.MomentumChange = cloneInt(o.MomentumChange)
	next.RelationshipChange = cloneInt(o.RelationshipChange)
	if o.KnowledgeGain != nil {
		kg := *o.KnowledgeGain
		next.KnowledgeGain = &kg
	}
	return next
}

// CloneOptions deep-copies a slice of options. A nil slice stays nil.
func CloneOptions(options []Option) []Option {
	if options == nil {
		return nil
	}
	out := make([]Option, len(options))
	for i, o := range options {
		out[i] = o.Clone()
	}
	return out
}

// AvailableOption is an option as offered to the host UI.
// Disabled options are still listed so they can be shown greyed out.
type AvailableOption struct {
	Option   Option `json:"option"`
	Disabled bool   `json:"disabled,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Int returns a pointer to v, for authoring effect fields in code.
func Int(v int) *int {
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
