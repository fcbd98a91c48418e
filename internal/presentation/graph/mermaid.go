package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/dialectic/pkg/domain"
)

// endNodeID names the synthetic terminal node that end options point to.
const endNodeID = "__end"

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedStages []string
	CurrentStage  string
}

// OverlayFromSession builds an overlay from a session's history.
func OverlayFromSession(s *domain.Session) *GraphOverlay {
	if s == nil {
		return nil
	}
	overlay := &GraphOverlay{CurrentStage: s.CurrentStageID}
	for _, h := range s.History {
		overlay.VisitedStages = append(overlay.VisitedStages, h.StageID)
	}
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart of a dialogue graph.
// It applies semantic styling:
// - Start: ((Circle))
// - Conclusion: ([Stadium])
// - Default: [Rectangle]
// Critical-path options are drawn thick, tangents and boast jumps dotted.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(g *domain.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	hasEnd := false
	for _, id := range g.StageIDs() {
		stage := g.Stages[id]
		safeID := sanitizeMermaidID(id)

		opener, closer := "[", "]"
		switch {
		case id == g.StartStageID:
			opener, closer = "((", "))"
		case stage.IsConclusion:
			opener, closer = "([", "])"
		}

		label := id
		if stage.SpeakerID != "" {
			label = fmt.Sprintf("%s <br/> %s", id, stage.SpeakerID)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		for _, o := range stage.Options {
			target := o.NextStageID
			if o.IsEndNode {
				target = endNodeID
				hasEnd = true
			}
			if target == "" {
				continue
			}

			text := o.ID
			if o.RequiredStarID != "" {
				text = fmt.Sprintf("%s 🔒 %s", o.ID, o.RequiredStarID)
			}
			text = strings.ReplaceAll(text, "\"", "'")

			arrow := fmt.Sprintf("-- \"%s\" -->", text)
			if o.IsCriticalPath {
				arrow = fmt.Sprintf("== \"%s\" ==>", text)
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(target))
		}

		if stage.TangentStageID != "" {
			fmt.Fprintf(&sb, "    %s -. \"tangent\" .-> %s\n", safeID, sanitizeMermaidID(stage.TangentStageID))
		}
		if stage.BoastStageID != "" {
			fmt.Fprintf(&sb, "    %s -. \"boast\" .-> %s\n", safeID, sanitizeMermaidID(stage.BoastStageID))
		}
	}

	if hasEnd {
		fmt.Fprintf(&sb, "    %s(((\"end\")))\n", endNodeID)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedStages {
			if _, ok := g.Stage(id); !ok {
				continue
			}
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentStage != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentStage))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
