package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/dialectic/internal/presentation/graph"
	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func sampleGraph() *domain.Graph {
	return &domain.Graph{
		ID:           "calibration",
		StartStageID: "intro",
		Stages: map[string]*domain.Stage{
			"intro": {
				ID: "intro", SpeakerID: "kapoor",
				TangentStageID: "side-note",
				BoastStageID:   "hard.check",
				Options: []domain.Option{
					{ID: "go", NextStageID: "wrap", IsCriticalPath: true},
					{ID: "tg51", NextStageID: "wrap", RequiredStarID: "tg51"},
					{ID: "hmm"},
				},
			},
			"side-note":  {ID: "side-note", Options: []domain.Option{{ID: "back", NextStageID: "intro"}}},
			"hard.check": {ID: "hard.check", Options: []domain.Option{{ID: "say \"what\"", NextStageID: "wrap"}}},
			"wrap":       {ID: "wrap", IsConclusion: true, Options: []domain.Option{{ID: "bye", IsEndNode: true}}},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	got := graph.GenerateMermaid(sampleGraph(), nil)

	for _, want := range []string{
		"graph TD\n",
		`intro(("intro <br/> kapoor"))`,
		`wrap(["wrap"])`,
		`side_note["side-note"]`,
		`intro == "go" ==> wrap`,
		`intro -- "tg51 🔒 tg51" --> wrap`,
		`intro -. "tangent" .-> side_note`,
		`intro -. "boast" .-> hard_check`,
		`hard_check -- "say 'what'" --> wrap`,
		`wrap -- "bye" --> __end`,
		`__end((("end")))`,
	} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, `"hmm"`, "options without a transition draw no edge")
	assert.NotContains(t, got, "Overlay")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	s := domain.NewSession("calibration", "intro")
	s.History = append(s.History,
		domain.HistoryEntry{StageID: "side-note"},
		domain.HistoryEntry{StageID: "intro"},
		domain.HistoryEntry{StageID: "ghost"},
	)
	s.CurrentStageID = "wrap"

	got := graph.GenerateMermaid(sampleGraph(), graph.OverlayFromSession(s))

	assert.Equal(t, 1, strings.Count(got, "class intro visited;"), "visited stages are deduplicated")
	assert.Contains(t, got, "class side_note visited;")
	assert.NotContains(t, got, "ghost", "unknown stages are skipped")
	assert.Contains(t, got, "class wrap current;")

	assert.Nil(t, graph.OverlayFromSession(nil))
}

func TestGenerateMermaid_Deterministic(t *testing.T) {
	g := sampleGraph()
	assert.Equal(t, graph.GenerateMermaid(g, nil), graph.GenerateMermaid(g, nil))
}
