package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/dialectic/pkg/domain"
)

// Severity ranks a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding on a graph.
type Issue struct {
	Severity Severity `json:"severity"`
	StageID  string   `json:"stage_id,omitempty"`
	OptionID string   `json:"option_id,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	loc := i.StageID
	if i.OptionID != "" {
		loc += "/" + i.OptionID
	}
	if loc == "" {
		return fmt.Sprintf("[%s] %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, loc, i.Message)
}

// Report collects the findings for one graph.
type Report struct {
	GraphID string  `json:"graph_id"`
	Issues  []Issue `json:"issues,omitempty"`
}

// HasErrors reports whether any issue is an error.
func (r *Report) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err returns the report as an error when it contains errors, nil otherwise.
func (r *Report) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return r
}

func (r *Report) Error() string {
	lines := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		lines = append(lines, i.String())
	}
	return fmt.Sprintf("graph %s: found %d issues:\n- %s", r.GraphID, len(r.Issues), strings.Join(lines, "\n- "))
}

func (r *Report) add(sev Severity, stageID, optionID, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: sev, StageID: stageID, OptionID: optionID, Message: fmt.Sprintf(format, args...)})
}

type config struct {
	speakers map[string]bool
}

// Option configures validation.
type Option func(*config)

// WithSpeakers enables a check that every stage speaker is a known mentor.
func WithSpeakers(ids ...string) Option {
	return func(c *config) {
		c.speakers = make(map[string]bool, len(ids))
		for _, id := range ids {
			c.speakers[id] = true
		}
	}
}

// ValidateGraph checks for broken links, unreachable stages and dead ends.
// Broken links and structural violations are errors; the rest are warnings,
// since the engine tolerates them at runtime by stalling.
func ValidateGraph(g *domain.Graph, opts ...Option) *Report {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Report{GraphID: g.ID}
	if err := g.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			r.add(SeverityError, "", "", "%s", line)
		}
	}

	for _, id := range g.StageIDs() {
		s := g.Stages[id]
		if s == nil {
			continue
		}
		if cfg.speakers != nil && s.SpeakerID != "" && !cfg.speakers[s.SpeakerID] {
			r.add(SeverityWarning, id, "", "unknown speaker %q", s.SpeakerID)
		}
		for _, target := range []struct{ field, id string }{{"tangent", s.TangentStageID}, {"boast", s.BoastStageID}} {
			if target.id != "" {
				if _, ok := g.Stage(target.id); !ok {
					r.add(SeverityError, id, "", "%s stage %q not found", target.field, target.id)
				}
			}
		}
		for _, o := range s.Options {
			switch {
			case o.NextStageID != "":
				if _, ok := g.Stage(o.NextStageID); !ok {
					r.add(SeverityError, id, o.ID, "next stage %q not found", o.NextStageID)
				}
			case !o.IsEndNode:
				r.add(SeverityWarning, id, o.ID, "option has no transition and stalls the session")
			}
		}
	}

	reachable := walk(g, g.StartStageID, edges)
	for _, id := range g.StageIDs() {
		if !reachable[id] {
			r.add(SeverityWarning, id, "", "stage is unreachable from %s", g.StartStageID)
		}
	}

	finishing := finishers(g)
	for _, id := range sortedKeys(reachable) {
		if _, ok := g.Stage(id); ok && !finishing[id] {
			r.add(SeverityWarning, id, "", "dead end: no terminal option or conclusion is reachable")
		}
	}
	return r
}

// edges lists every stage a session can move to from s.
func edges(s *domain.Stage) []string {
	var out []string
	for _, o := range s.Options {
		if o.NextStageID != "" {
			out = append(out, o.NextStageID)
		}
	}
	if s.TangentStageID != "" {
		out = append(out, s.TangentStageID)
	}
	if s.BoastStageID != "" {
		out = append(out, s.BoastStageID)
	}
	return out
}

func walk(g *domain.Graph, from string, next func(*domain.Stage) []string) map[string]bool {
	visited := make(map[string]bool)
	queue := []string{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		s, ok := g.Stage(id)
		if !ok {
			continue
		}
		visited[id] = true
		for _, target := range next(s) {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}
	return visited
}

// finishers returns the stages from which a session can end:
// conclusions, stages with a terminal option, and their ancestors.
func finishers(g *domain.Graph) map[string]bool {
	parents := make(map[string][]string)
	var queue []string
	for _, id := range g.StageIDs() {
		s := g.Stages[id]
		if s == nil {
			continue
		}
		for _, target := range edges(s) {
			parents[target] = append(parents[target], id)
		}
		if s.IsConclusion {
			queue = append(queue, id)
			continue
		}
		for _, o := range s.Options {
			if o.IsEndNode {
				queue = append(queue, id)
				break
			}
		}
	}

	done := make(map[string]bool)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if done[id] {
			continue
		}
		done[id] = true
		queue = append(queue, parents[id]...)
	}
	return done
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
