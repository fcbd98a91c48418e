package dsl

import "github.com/aretw0/dialectic/pkg/domain"

// StageBuilder provides a fluent API for configuring a stage.
type StageBuilder struct {
	stage   *domain.Stage
	builder *Builder
}

// Start makes this the graph's start stage.
func (s *StageBuilder) Start() *StageBuilder {
	s.builder.graph.StartStageID = s.stage.ID
	return s
}

// Speaker sets the mentor who speaks the stage.
func (s *StageBuilder) Speaker(id string) *StageBuilder {
	s.stage.SpeakerID = id
	return s
}

// Text sets the stage text.
func (s *StageBuilder) Text(text string) *StageBuilder {
	s.stage.Text = text
	return s
}

// Tangent sets the stage reached by a tangent move.
func (s *StageBuilder) Tangent(stageID string) *StageBuilder {
	s.stage.TangentStageID = stageID
	return s
}

// Boast sets the harder stage reached by the boast action.
func (s *StageBuilder) Boast(stageID string) *StageBuilder {
	s.stage.BoastStageID = stageID
	return s
}

// Conclusion marks the stage as a conclusion.
func (s *StageBuilder) Conclusion() *StageBuilder {
	s.stage.IsConclusion = true
	return s
}

// Option appends an option and returns its builder.
func (s *StageBuilder) Option(id, text string) *OptionBuilder {
	s.stage.Options = append(s.stage.Options, domain.Option{ID: id, Text: text})
	return &OptionBuilder{stage: s, index: len(s.stage.Options) - 1}
}

// OptionBuilder configures one option of a stage.
type OptionBuilder struct {
	stage *StageBuilder
	index int
}

func (o *OptionBuilder) opt() *domain.Option {
	return &o.stage.stage.Options[o.index]
}

// To sets the stage the option leads to.
func (o *OptionBuilder) To(stageID string) *OptionBuilder {
	o.opt().NextStageID = stageID
	return o
}

// End makes the option finish the dialogue.
func (o *OptionBuilder) End() *OptionBuilder {
	o.opt().IsEndNode = true
	return o
}

// Insight adds an insight change.
func (o *OptionBuilder) Insight(delta int) *OptionBuilder {
	o.opt().InsightChange = domain.Int(delta)
	return o
}

// Momentum adds a momentum change.
func (o *OptionBuilder) Momentum(delta int) *OptionBuilder {
	o.opt().MomentumChange = domain.Int(delta)
	return o
}

// ResetMomentum makes the option drop momentum to zero.
func (o *OptionBuilder) ResetMomentum() *OptionBuilder {
	o.opt().MomentumEffect = domain.MomentumEffectReset
	return o
}

// Relationship changes the stage speaker's relationship.
func (o *OptionBuilder) Relationship(delta int) *OptionBuilder {
	o.opt().RelationshipChange = domain.Int(delta)
	return o
}

// Gain adds mastery of a concept.
func (o *OptionBuilder) Gain(conceptID, domainID string, amount int) *OptionBuilder {
	o.opt().KnowledgeGain = &domain.KnowledgeGain{ConceptID: conceptID, DomainID: domainID, Amount: amount}
	return o
}

// Discovers reveals a concept without mastery.
func (o *OptionBuilder) Discovers(conceptID string) *OptionBuilder {
	o.opt().DiscoversConceptID = conceptID
	return o
}

// Requires gates the option on an active star.
func (o *OptionBuilder) Requires(starID string) *OptionBuilder {
	o.opt().RequiredStarID = starID
	return o
}

// Critical puts the option on the critical path.
func (o *OptionBuilder) Critical() *OptionBuilder {
	o.opt().IsCriticalPath = true
	return o
}

// Approach tags the option's conversational approach.
func (o *OptionBuilder) Approach(a domain.Approach) *OptionBuilder {
	o.opt().Approach = a
	return o
}

// Option appends a sibling option to the same stage.
func (o *OptionBuilder) Option(id, text string) *OptionBuilder {
	return o.stage.Option(id, text)
}
