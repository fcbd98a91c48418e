package strategy

import (
	"context"
	"fmt"

	"github.com/aretw0/dialectic/pkg/domain"
)

// OptionSnapshot is the option list read from the live session before dispatch.
type OptionSnapshot struct {
	StageID string
	Options []domain.Option
}

// Request is the context handed to a Handler.
type Request struct {
	Kind        Kind
	CharacterID string
	StageID     string

	// Snapshot is nil when no live options could be read.
	// Handlers must then supply their own fallback content.
	Snapshot *OptionSnapshot

	// Stage is the authored stage for StageID in the active graph, or nil.
	Stage *domain.Stage
}

// StageUpdate rewrites the live stage.
type StageUpdate struct {
	// Text replaces the displayed stage text when non-empty.
	Text string

	// JumpTo reassigns the session's current stage when non-empty.
	JumpTo string
}

// Outcome is what a handler asks the dispatcher to apply.
type Outcome struct {
	StageUpdate *StageUpdate

	// NewOptions, when non-nil, replace the visible options for the rest of the stage.
	NewOptions []domain.Option
}

// Handler resolves one strategic action.
// Handlers are declared blocking-capable so they may fetch external content.
type Handler interface {
	Handle(ctx context.Context, req Request) (Outcome, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, req Request) (Outcome, error)

// Handle calls f(ctx, req).
func (f HandlerFunc) Handle(ctx context.Context, req Request) (Outcome, error) {
	return f(ctx, req)
}

// Handlers holds exactly one handler per strategic action kind.
type Handlers struct {
	Reframe     Handler
	Extrapolate Handler
	Boast       Handler
	Synthesis   Handler
}

// DefaultHandlers builds the reference handlers over a mentor content catalog.
func DefaultHandlers(catalog Catalog) Handlers {
	return Handlers{
		Reframe:     HandlerFunc(catalog.reframe),
		Extrapolate: HandlerFunc(catalog.extrapolate),
		Boast:       HandlerFunc(catalog.boast),
		Synthesis:   HandlerFunc(catalog.synthesis),
	}
}

// Resolve returns the handler registered for kind.
func (h Handlers) Resolve(kind Kind) (Handler, error) {
	var handler Handler
	switch kind {
	case KindReframe:
		handler = h.Reframe
	case KindExtrapolate:
		handler = h.Extrapolate
	case KindBoast:
		handler = h.Boast
	case KindSynthesis:
		handler = h.Synthesis
	case KindNone:
		return nil, fmt.Errorf("%w: no action armed", domain.ErrUnknownAction)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAction, kind)
	}
	if handler == nil {
		return nil, fmt.Errorf("%w: no handler registered for %s", domain.ErrUnknownAction, kind)
	}
	return handler, nil
}
