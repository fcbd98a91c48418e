package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/strategy"
)

// AvailableOptions returns the visible options of the current stage.
// Gated options are flagged as disabled, never removed.
func (e *Engine) AvailableOptions() ([]domain.AvailableOption, error) {
	e.mu.RLock()
	stage, ok := e.liveStage()
	e.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNoActiveDialogue
	}

	out := make([]domain.AvailableOption, 0, len(stage.Options))
	for _, o := range stage.Options {
		out = append(out, e.gate(o))
	}
	return out, nil
}

// EnhanceOptions returns the available options decorated for an armed but
// uncommitted strategic action. The session is left untouched.
func (e *Engine) EnhanceOptions(armed strategy.Kind) ([]domain.AvailableOption, error) {
	options, err := e.AvailableOptions()
	if err != nil {
		return nil, err
	}
	plain := make([]domain.Option, len(options))
	for i, o := range options {
		plain[i] = o.Option
	}
	for i, o := range strategy.Enhance(plain, armed) {
		options[i].Option = o
	}
	return options, nil
}

func (e *Engine) gate(o domain.Option) domain.AvailableOption {
	ao := domain.AvailableOption{Option: o}
	if o.RequiredStarID != "" && !e.knowledge.IsStarActive(o.RequiredStarID) {
		ao.Disabled = true
		ao.Reason = fmt.Sprintf("requires star %s", o.RequiredStarID)
	}
	return ao
}

// SelectOption applies the option's effects exactly once and advances the session.
// Every rejection happens before the first effect, so a failed call changes nothing.
func (e *Engine) SelectOption(ctx context.Context, optionID string) error {
	if err := e.acquire(ctx); err != nil {
		return err
	}
	defer e.release()

	e.mu.RLock()
	session := e.session.Clone()
	graph := e.graph
	stage, ok := e.liveStage()
	e.mu.RUnlock()

	if session == nil {
		e.logger.Warn("option selected without an active dialogue", "option", optionID)
		return domain.ErrNoActiveDialogue
	}
	if !ok {
		e.logger.Warn("current stage missing from graph", "graph", session.GraphID, "stage", session.CurrentStageID)
		return fmt.Errorf("%w: %s", domain.ErrUnknownStage, session.CurrentStageID)
	}
	opt, ok := stage.Option(optionID)
	if !ok {
		e.logger.Warn("option not offered by current stage", "option", optionID, "stage", stage.ID)
		return fmt.Errorf("%w: %s", domain.ErrUnknownOption, optionID)
	}
	if gated := e.gate(opt); gated.Disabled {
		e.logger.Warn("locked option selected", "option", optionID, "reason", gated.Reason)
		return fmt.Errorf("%w: %s", domain.ErrOptionLocked, gated.Reason)
	}
	if !opt.IsEndNode && opt.NextStageID != "" {
		if _, ok := graph.Stage(opt.NextStageID); !ok {
			e.logger.Warn("option leads to unknown stage", "option", optionID, "next", opt.NextStageID)
			return fmt.Errorf("%w: %s", domain.ErrUnknownStage, opt.NextStageID)
		}
	}

	if stage.SpeakerID != "" && changesRelationship(opt) {
		if _, err := e.graphs.Mentor(stage.SpeakerID); err != nil {
			e.logger.Warn("option changes relationship with unknown speaker", "option", optionID, "speaker", stage.SpeakerID)
			return err
		}
	}

	e.applyEffects(ctx, stage.SpeakerID, opt, "option:"+opt.ID)

	session.History = append(session.History, domain.HistoryEntry{
		StageID:         stage.ID,
		OptionID:        opt.ID,
		Critical:        opt.IsCriticalPath,
		CriticalOffered: offersCriticalPath(stage),
	})
	session.Overlay = nil

	switch {
	case opt.IsEndNode:
		e.mu.Lock()
		e.session = session
		e.mu.Unlock()
		e.end(ctx, true)
		return nil
	case opt.NextStageID != "":
		session.CurrentStageID = opt.NextStageID
	default:
		e.logger.Warn("option has no transition; session stays on stage", "option", opt.ID, "stage", stage.ID)
	}

	e.mu.Lock()
	e.session = session
	e.mu.Unlock()
	return nil
}

// applyEffects runs the option's typed effects in order.
// Relationship changes go to the stage speaker, not to the option.
func (e *Engine) applyEffects(ctx context.Context, speakerID string, opt domain.Option, source string) {
	for _, effect := range opt.Effects() {
		switch eff := effect.(type) {
		case domain.InsightDelta:
			e.resources.UpdateInsight(ctx, eff.Amount, source)
		case domain.MomentumDelta:
			e.resources.UpdateMomentum(ctx, eff.Amount, source)
		case domain.MomentumReset:
			e.resources.ResetMomentum(ctx, source)
		case domain.RelationshipDelta:
			if speakerID == "" {
				e.logger.Warn("relationship change on a stage without speaker", "source", source)
				continue
			}
			if _, err := e.graphs.UpdateMentorRelationship(ctx, speakerID, eff.Amount); err != nil {
				e.logger.Warn("relationship change skipped", "source", source, "err", err)
			}
		case domain.KnowledgeGain:
			e.knowledge.Gain(ctx, eff, source)
		case domain.ConceptDiscovery:
			e.knowledge.DiscoverConcept(ctx, eff.ConceptID, source)
		default:
			e.logger.Error("unhandled effect", "type", fmt.Sprintf("%T", effect), "source", source)
		}
	}
}

func changesRelationship(opt domain.Option) bool {
	for _, effect := range opt.Effects() {
		if _, ok := effect.(domain.RelationshipDelta); ok {
			return true
		}
	}
	return false
}

func offersCriticalPath(stage *domain.Stage) bool {
	for _, o := range stage.Options {
		if o.IsCriticalPath {
			return true
		}
	}
	return false
}

// TakeTangent moves the session to the current stage's tangent stage.
func (e *Engine) TakeTangent(ctx context.Context) error {
	if err := e.acquire(ctx); err != nil {
		return err
	}
	defer e.release()

	e.mu.RLock()
	session := e.session.Clone()
	stage, ok := e.liveStage()
	graph := e.graph
	e.mu.RUnlock()

	if session == nil {
		return domain.ErrNoActiveDialogue
	}
	if !ok || stage.TangentStageID == "" {
		e.logger.Warn("stage declares no tangent", "stage", session.CurrentStageID)
		return fmt.Errorf("%w: no tangent from %s", domain.ErrUnknownStage, session.CurrentStageID)
	}
	if _, ok := graph.Stage(stage.TangentStageID); !ok {
		e.logger.Warn("tangent leads to unknown stage", "stage", stage.ID, "tangent", stage.TangentStageID)
		return fmt.Errorf("%w: %s", domain.ErrUnknownStage, stage.TangentStageID)
	}

	session.History = append(session.History, domain.HistoryEntry{StageID: stage.ID, Action: "tangent"})
	session.CurrentStageID = stage.TangentStageID
	session.Overlay = nil

	e.mu.Lock()
	e.session = session
	e.mu.Unlock()
	return nil
}
