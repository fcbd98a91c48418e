package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/dialectic"
	"github.com/aretw0/dialectic/internal/presentation/tui"
	"github.com/aretw0/dialectic/pkg/adapters/memory"
	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/session"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph() *domain.Graph {
	return &domain.Graph{
		ID:           "calibration",
		StartStageID: "intro",
		Stages: map[string]*domain.Stage{
			"intro": {
				ID:             "intro",
				SpeakerID:      "kapoor",
				Text:           "The chamber reading is ready.",
				TangentStageID: "side",
				Options: []domain.Option{
					{ID: "go", Text: "Let's begin.", NextStageID: "wrap", InsightChange: domain.Int(5), IsCriticalPath: true},
					{ID: "locked", Text: "Using TG-51...", NextStageID: "wrap", RequiredStarID: "tg51"},
				},
			},
			"side": {
				ID:        "side",
				SpeakerID: "quinn",
				Text:      "A tangent.",
				Options: []domain.Option{
					{ID: "back", Text: "Back to work.", NextStageID: "intro"},
				},
			},
			"wrap": {
				ID:           "wrap",
				SpeakerID:    "kapoor",
				Text:         "Good work.",
				IsConclusion: true,
				Options: []domain.Option{
					{ID: "done", Text: "Thanks.", IsEndNode: true},
				},
			},
		},
	}
}

func newPlayer(t *testing.T) (*Player, *bytes.Buffer) {
	t.Helper()
	loader, err := memory.NewFromGraphs(testGraph())
	require.NoError(t, err)
	eng, err := dialectic.New("", dialectic.WithContentRegistry(loader))
	require.NoError(t, err)
	require.NoError(t, eng.StartDialogue(context.Background(), "calibration"))

	var out bytes.Buffer
	console := tui.NewConsole(&out, 80)
	console.Profile = termenv.Ascii
	console.Markdown = tui.PlainText

	return &Player{
		Engine:  eng,
		Console: console,
		Slots:   session.NewManager(memory.NewStore()),
	}, &out
}

func TestPlay_RunsToConclusion(t *testing.T) {
	p, out := newPlayer(t)

	err := p.Play(context.Background(), strings.NewReader("1\n1\n"))
	require.NoError(t, err)

	assert.Nil(t, p.Engine.Session())
	assert.Contains(t, out.String(), "Dr. Kapoor")
	assert.Contains(t, out.String(), "Grade: Excellent")
	assert.Equal(t, 5, p.Engine.Resources().Insight)
}

func TestPlay_Quit(t *testing.T) {
	p, out := newPlayer(t)

	err := p.Play(context.Background(), strings.NewReader("q\n"))
	require.NoError(t, err)

	assert.Nil(t, p.Engine.Session())
	assert.Contains(t, out.String(), "Left the dialogue.")
}

func TestPlay_EndOfInputKeepsSession(t *testing.T) {
	p, _ := newPlayer(t)

	err := p.Play(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.NotNil(t, p.Engine.Session())
}

func TestPlay_CancelledContext(t *testing.T) {
	p, _ := newPlayer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, w := io.Pipe()
	defer w.Close()
	err := p.Play(ctx, r)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("Out of range option", func(t *testing.T) {
		p, _ := newPlayer(t)
		stage, _ := p.Engine.CurrentNode()
		options, _ := p.Engine.AvailableOptions()
		err := p.Execute(ctx, "9", stage, options)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("Locked option", func(t *testing.T) {
		p, _ := newPlayer(t)
		stage, _ := p.Engine.CurrentNode()
		options, _ := p.Engine.AvailableOptions()
		err := p.Execute(ctx, "2", stage, options)
		assert.ErrorIs(t, err, domain.ErrOptionLocked)
	})

	t.Run("Tangent", func(t *testing.T) {
		p, _ := newPlayer(t)
		stage, _ := p.Engine.CurrentNode()
		require.NoError(t, p.Execute(ctx, "t", stage, nil))
		current, ok := p.Engine.CurrentNode()
		require.True(t, ok)
		assert.Equal(t, "side", current.ID)
	})

	t.Run("Strategic action", func(t *testing.T) {
		p, out := newPlayer(t)
		stage, _ := p.Engine.CurrentNode()
		require.NoError(t, p.Execute(ctx, "r", stage, nil))
		assert.Contains(t, out.String(), "reframe applied.")
		assert.Equal(t, "reframe", p.Engine.Session().Overlay.Action)
	})

	t.Run("Armed preview commits nothing", func(t *testing.T) {
		p, out := newPlayer(t)
		stage, _ := p.Engine.CurrentNode()
		require.NoError(t, p.Execute(ctx, "b?", stage, nil))
		assert.Contains(t, out.String(), "boast armed; enter b to commit.")
		assert.Contains(t, out.String(), "1) Let's begin. [Challenge Mode]")
		assert.Nil(t, p.Engine.Session().Overlay)
		current, _ := p.Engine.CurrentNode()
		assert.Equal(t, "intro", current.ID)
		assert.Equal(t, "Let's begin.", current.Options[0].Text)
	})

	t.Run("Save and load", func(t *testing.T) {
		p, out := newPlayer(t)
		stage, _ := p.Engine.CurrentNode()
		options, _ := p.Engine.AvailableOptions()

		require.NoError(t, p.Execute(ctx, "save slot-a", stage, options))
		assert.Contains(t, out.String(), "Saved to slot slot-a.")

		require.NoError(t, p.Execute(ctx, "1", stage, options))
		current, _ := p.Engine.CurrentNode()
		assert.Equal(t, "wrap", current.ID)

		require.NoError(t, p.Execute(ctx, "load slot-a", stage, options))
		current, _ = p.Engine.CurrentNode()
		assert.Equal(t, "intro", current.ID)
		assert.Equal(t, 0, p.Engine.Resources().Insight)
	})

	t.Run("Load needs a slot", func(t *testing.T) {
		p, _ := newPlayer(t)
		err := p.Execute(ctx, "load", nil, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("Saving disabled", func(t *testing.T) {
		p, _ := newPlayer(t)
		p.Slots = nil
		assert.Error(t, p.Execute(ctx, "save", nil, nil))
	})

	t.Run("Unknown command", func(t *testing.T) {
		p, _ := newPlayer(t)
		err := p.Execute(ctx, "dance", nil, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("Quit", func(t *testing.T) {
		p, _ := newPlayer(t)
		assert.ErrorIs(t, p.Execute(ctx, "Q", nil, nil), ErrQuit)
	})

	t.Run("Blank line", func(t *testing.T) {
		p, _ := newPlayer(t)
		assert.NoError(t, p.Execute(ctx, "   ", nil, nil))
	})
}
