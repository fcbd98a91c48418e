package domain

// Effect is a single typed mutation applied when an option is chosen.
// The set of implementations is closed: InsightDelta, MomentumDelta, MomentumReset,
// RelationshipDelta, KnowledgeGain and ConceptDiscovery.
type Effect interface {
	effect()
}

// InsightDelta changes the player's insight.
type InsightDelta struct {
	Amount int
}

// MomentumDelta changes the player's momentum level.
type MomentumDelta struct {
	Amount int
}

// MomentumReset forces momentum to zero.
type MomentumReset struct{}

// RelationshipDelta changes the relationship with the speaker of the current stage.
type RelationshipDelta struct {
	Amount int
}

// KnowledgeGain increases the mastery of a concept within a knowledge domain.
type KnowledgeGain struct {
	ConceptID string `json:"concept_id" yaml:"concept_id" mapstructure:"concept_id"`
	DomainID  string `json:"domain_id,omitempty" yaml:"domain_id,omitempty" mapstructure:"domain_id"`
	Amount    int    `json:"amount" yaml:"amount" mapstructure:"amount"`
}

// ConceptDiscovery marks a concept as discovered.
type ConceptDiscovery struct {
	ConceptID string
}

func (InsightDelta) effect()      {}
func (MomentumDelta) effect()     {}
func (MomentumReset) effect()     {}
func (RelationshipDelta) effect() {}
func (KnowledgeGain) effect()     {}
func (ConceptDiscovery) effect()  {}
