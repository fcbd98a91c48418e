package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/dialectic/internal/runtime"
	"github.com/aretw0/dialectic/pkg/adapters/memory"
	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/registry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	loader, err := memory.NewFromGraphs(&domain.Graph{
		ID:           "G",
		StartStageID: "intro",
		Stages: map[string]*domain.Stage{
			"intro": {
				ID:             "intro",
				SpeakerID:      "kapoor",
				Text:           "Ready?",
				TangentStageID: "side",
				Options: []domain.Option{
					{ID: "go", Text: "Yes.", NextStageID: "end", InsightChange: domain.Int(5), IsCriticalPath: true},
				},
			},
			"side": {ID: "side", SpeakerID: "quinn", Text: "Aside.", Options: []domain.Option{{ID: "back", Text: "Back.", NextStageID: "intro"}}},
			"end":  {ID: "end", SpeakerID: "kapoor", IsConclusion: true, Options: []domain.Option{{ID: "bye", Text: "Bye.", IsEndNode: true}}},
		},
	})
	require.NoError(t, err)
	reg := registry.New(loader, registry.WithMentors(memory.DefaultMentors()))
	return NewServer(runtime.NewEngine(reg), loader, "test")
}

func TestServer_Tools(t *testing.T) {
	ctx := context.Background()
	s := newServer(t)
	req := mcp.CallToolRequest{}

	list, err := s.handleListGraphs(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"G"}, list.Graphs)

	idle, err := s.handleView(ctx, req, nil)
	require.NoError(t, err)
	assert.False(t, idle.Active)

	v, err := s.handleStart(ctx, req, map[string]interface{}{"graph_id": "G"})
	require.NoError(t, err)
	assert.True(t, v.Active)
	assert.Equal(t, "intro", v.StageID)
	assert.Equal(t, "kapoor", v.Speaker)
	assert.True(t, v.Tangent)
	require.Len(t, v.Options, 1)

	v, err = s.handleTangent(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, "side", v.StageID)

	v, err = s.handleSelect(ctx, req, map[string]interface{}{"option_id": "back"})
	require.NoError(t, err)
	assert.Equal(t, "intro", v.StageID)

	v, err = s.handleSelect(ctx, req, map[string]interface{}{"option_id": "go"})
	require.NoError(t, err)
	assert.Equal(t, "end", v.StageID)
	assert.Equal(t, 5, v.Resources.Insight)

	v, err = s.handleSelect(ctx, req, map[string]interface{}{"option_id": "bye"})
	require.NoError(t, err)
	assert.False(t, v.Active)
	assert.Equal(t, domain.GradeExcellent, v.Grade)
}

func TestServer_Errors(t *testing.T) {
	ctx := context.Background()
	s := newServer(t)
	req := mcp.CallToolRequest{}

	_, err := s.handleStart(ctx, req, map[string]interface{}{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = s.handleStart(ctx, req, map[string]interface{}{"graph_id": "missing"})
	assert.ErrorIs(t, err, domain.ErrUnknownGraph)

	_, err = s.handleAction(ctx, req, map[string]interface{}{"kind": "reframe"})
	assert.ErrorIs(t, err, domain.ErrNoActiveDialogue)

	_, err = s.handleStart(ctx, req, map[string]interface{}{"graph_id": "G"})
	require.NoError(t, err)

	_, err = s.handleSelect(ctx, req, map[string]interface{}{"option_id": "nope"})
	assert.ErrorIs(t, err, domain.ErrUnknownOption)

	_, err = s.handleAction(ctx, req, map[string]interface{}{"kind": "juggle"})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}

func TestServer_Action(t *testing.T) {
	ctx := context.Background()
	s := newServer(t)
	req := mcp.CallToolRequest{}

	_, err := s.handleStart(ctx, req, map[string]interface{}{"graph_id": "G"})
	require.NoError(t, err)

	v, err := s.handleAction(ctx, req, map[string]interface{}{"kind": "reframe"})
	require.NoError(t, err)
	assert.Equal(t, "intro", v.StageID)
	assert.NotEmpty(t, v.Options)
	assert.NotEqual(t, "go", v.Options[0].Option.ID)

	v, err = s.handleEnd(ctx, req, nil)
	require.NoError(t, err)
	assert.False(t, v.Active)
}

func TestServer_ActiveGraph(t *testing.T) {
	ctx := context.Background()
	s := newServer(t)

	_, err := s.activeGraph()
	assert.ErrorIs(t, err, domain.ErrNoActiveDialogue)

	_, err = s.handleStart(ctx, mcp.CallToolRequest{}, map[string]interface{}{"graph_id": "G"})
	require.NoError(t, err)

	text, err := s.activeGraph()
	require.NoError(t, err)
	assert.Contains(t, text, "graph TD")
	assert.Contains(t, text, "intro")
}
