package runtime_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/aretw0/dialectic/internal/logging"
	"github.com/aretw0/dialectic/internal/runtime"
	"github.com/aretw0/dialectic/pkg/adapters/memory"
	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/registry"
	"github.com/stretchr/testify/require"
)

// calibrationGraph is a small graph exercising every transition kind.
func calibrationGraph() *domain.Graph {
	return &domain.Graph{
		ID:           "G",
		StartStageID: "intro",
		Domain:       "dosimetry",
		Difficulty:   1,
		Stages: map[string]*domain.Stage{
			"intro": {
				ID:             "intro",
				SpeakerID:      "kapoor",
				Text:           "The chamber reading is ready.",
				TangentStageID: "side",
				BoastStageID:   "hard",
				Options: []domain.Option{
					{ID: "go", Text: "Let's begin.", NextStageID: "basics", InsightChange: domain.Int(5), IsCriticalPath: true, Approach: domain.ApproachConfidence},
					{ID: "wander", Text: "What's that poster?", NextStageID: "side"},
					{ID: "max", Text: "Push on.", NextStageID: "basics", MomentumChange: domain.Int(3)},
					{ID: "both", Text: "Fast then reset.", NextStageID: "basics", MomentumChange: domain.Int(2), MomentumEffect: domain.MomentumEffectReset},
				},
			},
			"basics": {
				ID:        "basics",
				SpeakerID: "kapoor",
				Text:      "Tell me about corrections.",
				Options: []domain.Option{
					{ID: "end", Text: "That's all.", IsEndNode: true, RelationshipChange: domain.Int(2)},
					{ID: "linger", Text: "Hmm.", InsightChange: domain.Int(1)},
					{ID: "gated", Text: "Using TG-51...", NextStageID: "side", RequiredStarID: "tg51", Approach: domain.ApproachPrecision},
					{ID: "guess", Text: "Probably fine.", NextStageID: "side", Approach: domain.ApproachCreative},
					{ID: "nowhere", Text: "Broken link.", NextStageID: "missing"},
					{ID: "learn", Text: "Show me.", NextStageID: "side", KnowledgeGain: &domain.KnowledgeGain{ConceptID: "tg51", DomainID: "dosimetry", Amount: 10}, DiscoversConceptID: "kq"},
				},
			},
			"side": {
				ID:        "side",
				SpeakerID: "quinn",
				Text:      "A tangent.",
				Options: []domain.Option{
					{ID: "back", Text: "Back to work.", NextStageID: "basics"},
				},
			},
			"hard": {
				ID:           "hard",
				SpeakerID:    "kapoor",
				Text:         "Derive it then.",
				IsConclusion: true,
				Options: []domain.Option{
					{ID: "finish", Text: "Done.", IsEndNode: true, IsCriticalPath: true},
				},
			},
		},
	}
}

type recorder struct {
	mu      sync.Mutex
	started []string
	ended   []*domain.DialogueEvent
	insight []*domain.ResourceEvent
	moment  []*domain.ResourceEvent
	actions []*domain.ActionEvent
}

func (r *recorder) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogueStarted: func(_ context.Context, e *domain.DialogueEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.started = append(r.started, e.GraphID)
		},
		OnDialogueEnded: func(_ context.Context, e *domain.DialogueEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.ended = append(r.ended, e)
		},
		OnInsightGained: func(_ context.Context, e *domain.ResourceEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.insight = append(r.insight, e)
		},
		OnMomentumChanged: func(_ context.Context, e *domain.ResourceEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.moment = append(r.moment, e)
		},
		OnStrategicAction: func(_ context.Context, e *domain.ActionEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.actions = append(r.actions, e)
		},
	}
}

type fixture struct {
	engine *runtime.Engine
	events *recorder
	logs   *bytes.Buffer
}

func newFixture(t *testing.T, opts ...runtime.Option) *fixture {
	t.Helper()
	loader, err := memory.NewFromGraphs(calibrationGraph())
	require.NoError(t, err)

	f := &fixture{events: &recorder{}, logs: &bytes.Buffer{}}
	logger := logging.NewWithWriter(f.logs, slog.LevelWarn, logging.FormatText)
	graphs := registry.New(loader, registry.WithMentors(memory.DefaultMentors()), registry.WithLogger(logger))

	base := []runtime.Option{runtime.WithLogger(logger), runtime.WithLifecycleHooks(f.events.hooks())}
	f.engine = runtime.NewEngine(graphs, append(base, opts...)...)
	return f
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	require.NoError(t, f.engine.StartDialogue(context.Background(), "G"))
}

func (f *fixture) moveTo(t *testing.T, optionID string) {
	t.Helper()
	require.NoError(t, f.engine.SelectOption(context.Background(), optionID))
}

func (f *fixture) stageID() string {
	s := f.engine.Session()
	if s == nil {
		return ""
	}
	return s.CurrentStageID
}

func (f *fixture) relationship(t *testing.T, mentorID string) int {
	t.Helper()
	m, err := f.engine.Registry().Mentor(mentorID)
	require.NoError(t, err)
	return m.Relationship
}
