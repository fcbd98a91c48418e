package runtime_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/dialectic/internal/runtime"
	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveOptionIDs(t *testing.T, e *runtime.Engine) []string {
	t.Helper()
	node, ok := e.CurrentNode()
	require.True(t, ok)
	ids := make([]string, 0, len(node.Options))
	for _, o := range node.Options {
		ids = append(ids, o.ID)
	}
	return ids
}

func TestApplyStrategicAction_ReframeFallback(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.moveTo(t, "go")
	// Only "gated" is tagged precision in basics, so the fallback pair is used.

	out, err := f.engine.ApplyStrategicAction(context.Background(), strategy.KindReframe, "kapoor", "basics")
	require.NoError(t, err)

	kapoor := strategy.DefaultCatalog().Lookup("kapoor")
	require.Len(t, out.NewOptions, 2)
	node, _ := f.engine.CurrentNode()
	require.Len(t, node.Options, 2)
	for i, o := range node.Options {
		assert.Equal(t, kapoor.Reframe.Options[i], o.Text)
		assert.Equal(t, 1, *o.RelationshipChange)
		assert.Equal(t, 5, *o.InsightChange)
	}
	assert.Equal(t, kapoor.Reframe.Narration, node.Text)
	assert.Equal(t, "basics", node.ID)

	require.Len(t, f.events.actions, 1)
	assert.True(t, f.events.actions[0].Success)
	assert.Equal(t, "reframe", f.events.actions[0].Kind)
}

func TestApplyStrategicAction_SynthesizedOptionsAdvance(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.moveTo(t, "go")

	out, err := f.engine.ApplyStrategicAction(context.Background(), strategy.KindReframe, "kapoor", "basics")
	require.NoError(t, err)
	assert.Equal(t, "side", out.NewOptions[0].NextStageID, "continuation is the first authored transition")

	f.moveTo(t, out.NewOptions[0].ID)

	assert.Equal(t, "side", f.stageID())
	assert.Equal(t, 10, f.engine.Resources().Insight())
	assert.Equal(t, 51, f.relationship(t, "kapoor"))

	node, _ := f.engine.CurrentNode()
	assert.Equal(t, "A tangent.", node.Text, "overlay does not follow the session")
}

func TestApplyStrategicAction_BoastJump(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	out, err := f.engine.ApplyStrategicAction(context.Background(), strategy.KindBoast, "kapoor", "intro")
	require.NoError(t, err)

	assert.Nil(t, out.NewOptions)
	assert.Equal(t, "hard", f.stageID())
	assert.Equal(t, []string{"finish"}, liveOptionIDs(t, f.engine))

	s := f.engine.Session()
	last := s.History[len(s.History)-1]
	assert.Equal(t, domain.HistoryEntry{StageID: "intro", Action: "boast"}, last)
}

func TestApplyStrategicAction_BoastFallback(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.moveTo(t, "go")

	_, err := f.engine.ApplyStrategicAction(context.Background(), strategy.KindBoast, "kapoor", "basics")
	require.NoError(t, err)

	assert.Equal(t, "basics", f.stageID())
	node, _ := f.engine.CurrentNode()
	require.Len(t, node.Options, 2)
	var critical int
	for _, o := range node.Options {
		if o.IsCriticalPath {
			critical++
		}
	}
	assert.Equal(t, 1, critical)

	f.engine.Resources().Restore(domain.ResourceState{Insight: 40, Momentum: 2})
	f.moveTo(t, node.Options[1].ID)
	assert.Equal(t, 0, f.engine.Resources().Momentum())
	assert.Equal(t, 40, f.engine.Resources().Insight())
	assert.Equal(t, 48, f.relationship(t, "kapoor"))
}

func TestApplyStrategicAction_ExtrapolateAndSynthesis(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	ctx := context.Background()

	_, err := f.engine.ApplyStrategicAction(ctx, strategy.KindExtrapolate, "kapoor", "intro")
	require.NoError(t, err)
	assert.Len(t, liveOptionIDs(t, f.engine), 2)

	_, err = f.engine.ApplyStrategicAction(ctx, strategy.KindSynthesis, "kapoor", "intro")
	require.NoError(t, err)
	ids := liveOptionIDs(t, f.engine)
	require.Len(t, ids, 3)

	f.moveTo(t, ids[0])
	assert.Equal(t, "basics", f.stageID())
	assert.Equal(t, strategy.SynthesisInsight, f.engine.Resources().Insight())
	assert.Len(t, f.engine.Knowledge().Concepts(), 1)
}

func TestApplyStrategicAction_HandlerFaultIsAtomic(t *testing.T) {
	tests := []struct {
		name    string
		handler strategy.HandlerFunc
	}{
		{"error", func(context.Context, strategy.Request) (strategy.Outcome, error) {
			return strategy.Outcome{StageUpdate: &strategy.StageUpdate{JumpTo: "side"}}, errors.New("content service down")
		}},
		{"panic", func(context.Context, strategy.Request) (strategy.Outcome, error) {
			panic("half-built outcome")
		}},
		{"invalid jump", func(context.Context, strategy.Request) (strategy.Outcome, error) {
			return strategy.Outcome{StageUpdate: &strategy.StageUpdate{JumpTo: "missing"}}, nil
		}},
		{"duplicate options", func(context.Context, strategy.Request) (strategy.Outcome, error) {
			return strategy.Outcome{
				StageUpdate: &strategy.StageUpdate{Text: "rewritten"},
				NewOptions:  []domain.Option{{ID: "x"}, {ID: "x"}},
			}, nil
		}},
		{"terminal with next", func(context.Context, strategy.Request) (strategy.Outcome, error) {
			return strategy.Outcome{NewOptions: []domain.Option{{ID: "x", IsEndNode: true, NextStageID: "side"}}}, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, runtime.WithHandlers(strategy.Handlers{Synthesis: tt.handler}))
			f.start(t)
			before := f.engine.Session()
			beforeNode, _ := f.engine.CurrentNode()

			_, err := f.engine.ApplyStrategicAction(context.Background(), strategy.KindSynthesis, "kapoor", "intro")

			require.Error(t, err)
			assert.Equal(t, before, f.engine.Session())
			afterNode, _ := f.engine.CurrentNode()
			assert.Equal(t, beforeNode, afterNode)
			require.Len(t, f.events.actions, 1)
			assert.False(t, f.events.actions[0].Success)
		})
	}
}

func TestApplyStrategicAction_HandlerFaultError(t *testing.T) {
	h := strategy.Handlers{Boast: strategy.HandlerFunc(func(context.Context, strategy.Request) (strategy.Outcome, error) {
		panic("boom")
	})}
	f := newFixture(t, runtime.WithHandlers(h))
	f.start(t)

	_, err := f.engine.ApplyStrategicAction(context.Background(), strategy.KindBoast, "kapoor", "intro")

	assert.ErrorIs(t, err, domain.ErrHandlerFault)
	var fault *runtime.HandlerFaultError
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, strategy.KindBoast, fault.Kind)
	assert.Contains(t, fault.Error(), "boom")
}

func TestApplyStrategicAction_Rejections(t *testing.T) {
	f := newFixture(t, runtime.WithHandlers(strategy.Handlers{}))
	f.start(t)
	ctx := context.Background()

	_, err := f.engine.ApplyStrategicAction(ctx, strategy.KindNone, "kapoor", "intro")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.engine.ApplyStrategicAction(ctx, strategy.KindReframe, "", "intro")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.engine.ApplyStrategicAction(ctx, strategy.KindReframe, "kapoor", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.engine.ApplyStrategicAction(ctx, strategy.KindReframe, "kapoor", "intro")
	assert.ErrorIs(t, err, domain.ErrUnknownAction, "no handler registered")

	assert.Equal(t, "intro", f.stageID())
}

func TestApplyStrategicAction_StaleStage(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.moveTo(t, "go")

	_, err := f.engine.ApplyStrategicAction(context.Background(), strategy.KindBoast, "kapoor", "intro")

	assert.ErrorIs(t, err, domain.ErrUnknownStage)
	assert.Equal(t, "basics", f.stageID())
}

func TestApplyStrategicAction_WithoutSession(t *testing.T) {
	var got strategy.Request
	h := strategy.Handlers{Reframe: strategy.HandlerFunc(func(ctx context.Context, req strategy.Request) (strategy.Outcome, error) {
		got = req
		return strategy.DefaultHandlers(strategy.DefaultCatalog()).Reframe.Handle(ctx, req)
	})}
	f := newFixture(t, runtime.WithHandlers(h))

	out, err := f.engine.ApplyStrategicAction(context.Background(), strategy.KindReframe, "quinn", "intro")

	require.NoError(t, err)
	assert.Nil(t, got.Snapshot)
	assert.Nil(t, got.Stage)
	assert.Len(t, out.NewOptions, 2)
	assert.Nil(t, f.engine.Session())
}

func TestApplyStrategicAction_SnapshotReflectsOverlay(t *testing.T) {
	var snapshots [][]string
	record := strategy.HandlerFunc(func(_ context.Context, req strategy.Request) (strategy.Outcome, error) {
		var ids []string
		for _, o := range req.Snapshot.Options {
			ids = append(ids, o.ID)
		}
		snapshots = append(snapshots, ids)
		return strategy.Outcome{NewOptions: []domain.Option{{ID: "only"}}}, nil
	})
	f := newFixture(t, runtime.WithHandlers(strategy.Handlers{Extrapolate: record}))
	f.start(t)
	ctx := context.Background()

	_, err := f.engine.ApplyStrategicAction(ctx, strategy.KindExtrapolate, "kapoor", "intro")
	require.NoError(t, err)
	_, err = f.engine.ApplyStrategicAction(ctx, strategy.KindExtrapolate, "kapoor", "intro")
	require.NoError(t, err)

	require.Len(t, snapshots, 2)
	assert.Equal(t, []string{"go", "wander", "max", "both"}, snapshots[0])
	assert.Equal(t, []string{"only"}, snapshots[1])
}

func TestApplyStrategicAction_SerialisesDispatch(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 2)
	var mu sync.Mutex
	var seen [][]string

	slow := strategy.HandlerFunc(func(_ context.Context, req strategy.Request) (strategy.Outcome, error) {
		var ids []string
		for _, o := range req.Snapshot.Options {
			ids = append(ids, o.ID)
		}
		mu.Lock()
		n := len(seen)
		seen = append(seen, ids)
		mu.Unlock()
		entered <- struct{}{}
		if n == 0 {
			<-release
		}
		return strategy.Outcome{NewOptions: []domain.Option{{ID: "round"}}}, nil
	})
	f := newFixture(t, runtime.WithHandlers(strategy.Handlers{Synthesis: slow}))
	f.start(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = f.engine.ApplyStrategicAction(ctx, strategy.KindSynthesis, "kapoor", "intro")
	}()
	<-entered

	second := make(chan error, 1)
	go func() {
		_, err := f.engine.ApplyStrategicAction(ctx, strategy.KindSynthesis, "kapoor", "intro")
		second <- err
	}()

	select {
	case <-entered:
		t.Fatal("second dispatch ran while the first was unresolved")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	wg.Wait()
	require.NoError(t, <-second)

	require.Len(t, seen, 2)
	assert.Equal(t, []string{"round"}, seen[1], "second dispatch sees the first outcome")
}

func TestApplyStrategicAction_QueuedDispatchHonoursContext(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	blocking := strategy.HandlerFunc(func(context.Context, strategy.Request) (strategy.Outcome, error) {
		close(entered)
		<-release
		return strategy.Outcome{}, nil
	})
	f := newFixture(t, runtime.WithHandlers(strategy.Handlers{Boast: blocking}))
	f.start(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.engine.ApplyStrategicAction(context.Background(), strategy.KindBoast, "kapoor", "intro")
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := f.engine.SelectOption(ctx, "go")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
	<-done
	assert.Equal(t, "intro", f.stageID())
}
