package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by lifecycle hooks.
type Metrics struct {
	DialoguesStarted *prometheus.CounterVec
	DialoguesEnded   *prometheus.CounterVec
	Insight          prometheus.Gauge
	Momentum         prometheus.Gauge
	ConceptsFound    prometheus.Counter
	Relationships    *prometheus.GaugeVec
	StrategicActions *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		DialoguesStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialectic_dialogues_started_total",
				Help: "Total number of dialogues started",
			},
			[]string{"graph_id"},
		),
		DialoguesEnded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialectic_dialogues_ended_total",
				Help: "Total number of dialogues ended, by completion",
			},
			[]string{"graph_id", "completed"},
		),
		Insight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dialectic_insight",
			Help: "Current insight value",
		}),
		Momentum: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dialectic_momentum",
			Help: "Current momentum level",
		}),
		ConceptsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dialectic_concepts_discovered_total",
			Help: "Total number of concepts discovered",
		}),
		Relationships: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dialectic_mentor_relationship",
				Help: "Current relationship value per mentor",
			},
			[]string{"mentor_id"},
		),
		StrategicActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialectic_strategic_actions_total",
				Help: "Total number of strategic actions dispatched",
			},
			[]string{"kind", "success"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.DialoguesStarted, m.DialoguesEnded, m.Insight, m.Momentum,
		m.ConceptsFound, m.Relationships, m.StrategicActions,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogueStarted: func(_ context.Context, e *domain.DialogueEvent) {
			m.DialoguesStarted.WithLabelValues(e.GraphID).Inc()
		},
		OnDialogueEnded: func(_ context.Context, e *domain.DialogueEvent) {
			m.DialoguesEnded.WithLabelValues(e.GraphID, strconv.FormatBool(e.Completed)).Inc()
		},
		OnInsightGained: func(_ context.Context, e *domain.ResourceEvent) {
			m.Insight.Set(float64(e.Value))
		},
		OnMomentumChanged: func(_ context.Context, e *domain.ResourceEvent) {
			m.Momentum.Set(float64(e.Value))
		},
		OnKnowledgeDiscovered: func(_ context.Context, _ *domain.KnowledgeEvent) {
			m.ConceptsFound.Inc()
		},
		OnMentorRelationshipChanged: func(_ context.Context, e *domain.RelationshipEvent) {
			m.Relationships.WithLabelValues(e.MentorID).Set(float64(e.NewValue))
		},
		OnStrategicAction: func(_ context.Context, e *domain.ActionEvent) {
			m.StrategicActions.WithLabelValues(e.Kind, strconv.FormatBool(e.Success)).Inc()
		},
	}
}
