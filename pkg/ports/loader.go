package ports

import "github.com/aretw0/dialectic/pkg/domain"

// ContentRegistry defines how the engine retrieves authored dialogue graphs.
// This allows the content source (Loam, YAML files, Memory) to be decoupled.
type ContentRegistry interface {
	// GetGraph retrieves a graph by ID.
	// It returns an error wrapping domain.ErrUnknownGraph if the graph does not exist.
	GetGraph(id string) (*domain.Graph, error)

	// ListGraphs returns the IDs of all graphs available in the registry.
	// This is used for introspection and visualization tools (e.g. 'dialectic graph').
	ListGraphs() ([]string, error)
}

// MentorDirectory supplies mentor records keyed by ID.
type MentorDirectory interface {
	// GetMentor returns an error wrapping domain.ErrUnknownMentor if the mentor does not exist.
	GetMentor(id string) (domain.Mentor, error)

	// ListMentors returns every mentor in the directory.
	ListMentors() ([]domain.Mentor, error)
}
