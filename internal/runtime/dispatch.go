package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/strategy"
)

// HandlerFaultError reports a strategic action handler that returned an error or panicked.
type HandlerFaultError struct {
	Kind  strategy.Kind
	Cause error
}

func (e *HandlerFaultError) Error() string {
	return fmt.Sprintf("%s handler failed: %v", e.Kind, e.Cause)
}

func (e *HandlerFaultError) Unwrap() error { return e.Cause }

// Is matches domain.ErrHandlerFault.
func (e *HandlerFaultError) Is(target error) bool { return target == domain.ErrHandlerFault }

// ApplyStrategicAction runs the handler for kind against the live session and
// commits its outcome in a single swap. It returns the outcome as applied.
//
// Without an active dialogue the handler still runs on fallback content and
// its outcome is returned, but there is nothing to apply it to.
// stageID must name the live stage; a stale stage is rejected.
func (e *Engine) ApplyStrategicAction(ctx context.Context, kind strategy.Kind, characterID, stageID string) (strategy.Outcome, error) {
	out, err := e.dispatch(ctx, kind, characterID, stageID)
	if err != nil {
		e.logger.Warn("strategic action failed", "kind", kind, "character", characterID, "stage", stageID, "err", err)
		e.events.StrategicAction(ctx, kind.String(), characterID, stageID, false)
		return strategy.Outcome{}, err
	}
	e.logger.Info("strategic action applied", "kind", kind, "character", characterID, "stage", stageID)
	e.events.StrategicAction(ctx, kind.String(), characterID, stageID, true)
	return out, nil
}

func (e *Engine) dispatch(ctx context.Context, kind strategy.Kind, characterID, stageID string) (strategy.Outcome, error) {
	if kind == strategy.KindNone || characterID == "" || stageID == "" {
		return strategy.Outcome{}, fmt.Errorf("%w: action, character and stage are required", domain.ErrInvalidArgument)
	}
	handler, err := e.handlers.Resolve(kind)
	if err != nil {
		return strategy.Outcome{}, err
	}

	if err := e.acquire(ctx); err != nil {
		return strategy.Outcome{}, err
	}
	defer e.release()

	e.mu.RLock()
	session := e.session.Clone()
	graph := e.graph
	live, hasStage := e.liveStage()
	e.mu.RUnlock()

	req := strategy.Request{Kind: kind, CharacterID: characterID, StageID: stageID}
	if session != nil {
		if session.CurrentStageID != stageID {
			return strategy.Outcome{}, fmt.Errorf("%w: %s is not the live stage (%s)", domain.ErrUnknownStage, stageID, session.CurrentStageID)
		}
		if hasStage {
			req.Snapshot = &strategy.OptionSnapshot{StageID: live.ID, Options: domain.CloneOptions(live.Options)}
		}
		req.Stage, _ = graph.Stage(stageID)
		req.Stage = req.Stage.Clone()
	}

	out, err := invoke(ctx, handler, req)
	if err != nil {
		return strategy.Outcome{}, err
	}

	if session == nil {
		e.logger.Debug("no active dialogue; outcome not applied", "kind", kind)
		return out, nil
	}

	next, out, err := e.merge(session, graph, kind, out)
	if err != nil {
		return strategy.Outcome{}, err
	}

	e.mu.Lock()
	e.session = next
	e.mu.Unlock()
	return out, nil
}

func invoke(ctx context.Context, h strategy.Handler, req strategy.Request) (out strategy.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = strategy.Outcome{}
			err = &HandlerFaultError{Kind: req.Kind, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	out, err = h.Handle(ctx, req)
	if err != nil {
		return strategy.Outcome{}, &HandlerFaultError{Kind: req.Kind, Cause: err}
	}
	return out, nil
}

// merge builds the post-dispatch session from a copy of the current one.
// The outcome is validated in full before anything is returned.
func (e *Engine) merge(session *domain.Session, graph *domain.Graph, kind strategy.Kind, out strategy.Outcome) (*domain.Session, strategy.Outcome, error) {
	next := session.Clone()
	overlay := next.ActiveOverlay()

	if u := out.StageUpdate; u != nil && u.JumpTo != "" {
		if _, ok := graph.Stage(u.JumpTo); !ok {
			return nil, out, fmt.Errorf("%w: jump target %s", domain.ErrUnknownStage, u.JumpTo)
		}
		next.History = append(next.History, domain.HistoryEntry{StageID: next.CurrentStageID, Action: kind.String()})
		next.CurrentStageID = u.JumpTo
		overlay = nil
	} else if u != nil && u.Text != "" {
		if overlay == nil {
			overlay = &domain.StageOverlay{StageID: next.CurrentStageID}
		}
		overlay.Text = u.Text
	}

	if out.NewOptions != nil {
		authored, _ := graph.Stage(next.CurrentStageID)
		options, err := prepareOptions(out.NewOptions, authored, graph)
		if err != nil {
			return nil, out, err
		}
		if overlay == nil {
			overlay = &domain.StageOverlay{StageID: next.CurrentStageID}
		}
		overlay.Options = options
		out.NewOptions = domain.CloneOptions(options)
	}

	if overlay != nil {
		overlay.Action = kind.String()
	}
	next.Overlay = overlay
	return next, out, nil
}

// prepareOptions checks synthesized options and gives those without a
// transition the stage continuation so that choosing them advances the graph.
func prepareOptions(options []domain.Option, stage *domain.Stage, graph *domain.Graph) ([]domain.Option, error) {
	var continuation string
	if stage != nil {
		continuation = stage.Continuation()
	}

	out := domain.CloneOptions(options)
	seen := make(map[string]bool, len(out))
	var errs []error
	for i := range out {
		o := &out[i]
		if err := o.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[o.ID] {
			errs = append(errs, fmt.Errorf("duplicate option %q", o.ID))
		}
		seen[o.ID] = true
		if !o.IsEndNode && o.NextStageID == "" {
			o.NextStageID = continuation
		}
		if o.NextStageID != "" {
			if _, ok := graph.Stage(o.NextStageID); !ok {
				errs = append(errs, fmt.Errorf("%w: option %s leads to %s", domain.ErrUnknownStage, o.ID, o.NextStageID))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid options from handler: %w", err)
	}
	return out, nil
}
