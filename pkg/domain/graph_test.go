package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_Validate(t *testing.T) {
	valid := func() *Graph {
		return &Graph{
			ID:           "g",
			StartStageID: "intro",
			Difficulty:   2,
			Stages: map[string]*Stage{
				"intro":  {ID: "intro", SpeakerID: "kapoor", Options: []Option{{ID: "go", NextStageID: "basics"}}},
				"basics": {ID: "basics", SpeakerID: "kapoor", Options: []Option{{ID: "end", IsEndNode: true}}},
			},
		}
	}

	t.Run("Valid", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("Missing Start Stage", func(t *testing.T) {
		g := valid()
		g.StartStageID = "nowhere"
		assert.ErrorContains(t, g.Validate(), "start stage")
	})

	t.Run("Difficulty Out Of Range", func(t *testing.T) {
		g := valid()
		g.Difficulty = 4
		assert.ErrorContains(t, g.Validate(), "difficulty")
	})

	t.Run("Key Mismatch", func(t *testing.T) {
		g := valid()
		g.Stages["basics"].ID = "other"
		assert.ErrorContains(t, g.Validate(), "does not match")
	})

	t.Run("Terminal Option With Next Stage", func(t *testing.T) {
		g := valid()
		g.Stages["basics"].Options[0].NextStageID = "intro"
		assert.ErrorContains(t, g.Validate(), "end node")
	})

	t.Run("Duplicate Option", func(t *testing.T) {
		g := valid()
		g.Stages["intro"].Options = append(g.Stages["intro"].Options, Option{ID: "go"})
		assert.ErrorContains(t, g.Validate(), "duplicate option")
	})
}

func TestGraph_Normalize(t *testing.T) {
	g := &Graph{ID: "g", StartStageID: "a", Stages: map[string]*Stage{"a": {}}}
	g.Normalize()

	assert.Equal(t, "a", g.Stages["a"].ID)
	assert.Equal(t, 1, g.Difficulty)
}

func TestSession_CloneIsDeep(t *testing.T) {
	s := NewSession("g", "intro")
	s.Overlay = &StageOverlay{StageID: "intro", Options: []Option{{ID: "x", InsightChange: Int(1)}}}

	cp := s.Clone()
	cp.History = append(cp.History, HistoryEntry{StageID: "intro", OptionID: "x"})
	*cp.Overlay.Options[0].InsightChange = 7

	assert.Len(t, s.History, 1)
	assert.Equal(t, 1, *s.Overlay.Options[0].InsightChange)
}

func TestSession_ActiveOverlay(t *testing.T) {
	s := NewSession("g", "intro")
	assert.Nil(t, s.ActiveOverlay())

	s.Overlay = &StageOverlay{StageID: "intro", Text: "x"}
	assert.NotNil(t, s.ActiveOverlay())

	s.CurrentStageID = "basics"
	assert.Nil(t, s.ActiveOverlay(), "overlay of a previous stage must not leak")
}
