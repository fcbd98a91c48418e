package strategy

import (
	"context"
	"fmt"

	"github.com/aretw0/dialectic/pkg/domain"
)

// Rewards carried by synthesized options.
const (
	ReframeInsight      = 5
	ReframeRelationship = 1

	ExtrapolateInsight   = 15
	ExtrapolateKnowledge = 10

	BoastExpertInsight       = 30
	BoastExpertMastery       = 15
	BoastFailureRelationship = -2

	SynthesisInsight = 20
	SynthesisMastery = 12
)

func syntheticID(kind Kind, characterID string, n int) string {
	return fmt.Sprintf("%s-%s-%d", kind, characterID, n)
}

// reframe keeps the humble and precision options, or offers two
// mentor-specific fallbacks when fewer than two survive.
func (c Catalog) reframe(_ context.Context, req Request) (Outcome, error) {
	content := c.Lookup(req.CharacterID)
	out := Outcome{StageUpdate: &StageUpdate{Text: content.Reframe.Narration}}

	var kept []domain.Option
	if req.Snapshot != nil {
		for _, o := range req.Snapshot.Options {
			if o.Approach == domain.ApproachHumble || o.Approach == domain.ApproachPrecision {
				kept = append(kept, o.Clone())
			}
		}
	}
	if len(kept) >= 2 {
		out.NewOptions = kept
		return out, nil
	}

	out.NewOptions = make([]domain.Option, 0, len(content.Reframe.Options))
	for i, text := range content.Reframe.Options {
		out.NewOptions = append(out.NewOptions, domain.Option{
			ID:                 syntheticID(KindReframe, req.CharacterID, i+1),
			Text:               text,
			InsightChange:      domain.Int(ReframeInsight),
			RelationshipChange: domain.Int(ReframeRelationship),
			Approach:           domain.ApproachHumble,
		})
	}
	return out, nil
}

func (c Catalog) extrapolate(_ context.Context, req Request) (Outcome, error) {
	content := c.Lookup(req.CharacterID)
	out := Outcome{
		StageUpdate: &StageUpdate{Text: content.Extrapolate.Narration},
		NewOptions:  make([]domain.Option, 0, len(content.Extrapolate.Options)),
	}
	for i, topic := range content.Extrapolate.Options {
		out.NewOptions = append(out.NewOptions, domain.Option{
			ID:            syntheticID(KindExtrapolate, req.CharacterID, i+1),
			Text:          topic.Text,
			InsightChange: domain.Int(ExtrapolateInsight),
			KnowledgeGain: topic.gain(ExtrapolateKnowledge),
			Approach:      domain.ApproachCreative,
		})
	}
	return out, nil
}

// boast jumps to the authored boast stage when the active graph declares one.
// Otherwise it offers a double-or-nothing pair: an expert answer on the
// critical path and an overconfident one that costs momentum and trust.
func (c Catalog) boast(_ context.Context, req Request) (Outcome, error) {
	if req.Stage != nil && req.Stage.BoastStageID != "" {
		return Outcome{StageUpdate: &StageUpdate{JumpTo: req.Stage.BoastStageID}}, nil
	}

	content := c.Lookup(req.CharacterID)
	expert := content.Boast.Expert
	return Outcome{
		StageUpdate: &StageUpdate{Text: content.Boast.Narration},
		NewOptions: []domain.Option{
			{
				ID:             syntheticID(KindBoast, req.CharacterID, 1),
				Text:           expert.Text,
				InsightChange:  domain.Int(BoastExpertInsight),
				KnowledgeGain:  expert.gain(BoastExpertMastery),
				IsCriticalPath: true,
				Approach:       domain.ApproachConfidence,
			},
			{
				ID:                 syntheticID(KindBoast, req.CharacterID, 2),
				Text:               content.Boast.Overconfident,
				InsightChange:      domain.Int(0),
				RelationshipChange: domain.Int(BoastFailureRelationship),
				MomentumEffect:     domain.MomentumEffectReset,
				Approach:           domain.ApproachConfidence,
			},
		},
	}, nil
}

func (c Catalog) synthesis(_ context.Context, req Request) (Outcome, error) {
	content := c.Lookup(req.CharacterID)
	out := Outcome{
		StageUpdate: &StageUpdate{Text: content.Synthesis.Narration},
		NewOptions:  make([]domain.Option, 0, len(content.Synthesis.Options)),
	}
	for i, topic := range content.Synthesis.Options {
		out.NewOptions = append(out.NewOptions, domain.Option{
			ID:            syntheticID(KindSynthesis, req.CharacterID, i+1),
			Text:          topic.Text,
			InsightChange: domain.Int(SynthesisInsight),
			KnowledgeGain: topic.gain(SynthesisMastery),
			Approach:      domain.ApproachPrecision,
		})
	}
	return out, nil
}

func (t Topic) gain(amount int) *domain.KnowledgeGain {
	return &domain.KnowledgeGain{ConceptID: t.ConceptID, DomainID: t.DomainID, Amount: amount}
}
