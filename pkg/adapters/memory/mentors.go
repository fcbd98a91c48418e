package memory

import (
	"fmt"
	"sort"

	"github.com/aretw0/dialectic/pkg/domain"
)

// Mentors implements ports.MentorDirectory over a fixed set of records.
type Mentors struct {
	records map[string]domain.Mentor
}

// NewMentors creates a directory holding copies of mentors.
func NewMentors(mentors ...domain.Mentor) *Mentors {
	records := make(map[string]domain.Mentor, len(mentors))
	for _, m := range mentors {
		records[m.ID] = m.Clone()
	}
	return &Mentors{records: records}
}

// GetMentor returns the mentor with the given ID.
func (d *Mentors) GetMentor(id string) (domain.Mentor, error) {
	m, ok := d.records[id]
	if !ok {
		return domain.Mentor{}, fmt.Errorf("%w: %s", domain.ErrUnknownMentor, id)
	}
	return m.Clone(), nil
}

// ListMentors returns every mentor ordered by ID.
func (d *Mentors) ListMentors() ([]domain.Mentor, error) {
	out := make([]domain.Mentor, 0, len(d.records))
	for _, m := range d.records {
		out = append(out, m.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DefaultMentors returns the four teaching mentors with a neutral starting relationship.
func DefaultMentors() *Mentors {
	return NewMentors(
		domain.Mentor{ID: "garcia", Name: "Dr. Garcia", Relationship: 50, Domains: []string{"radiation-oncology", "radiobiology"}},
		domain.Mentor{ID: "jesse", Name: "Jesse", Relationship: 50, Domains: []string{"linac-engineering", "radiation-safety"}},
		domain.Mentor{ID: "kapoor", Name: "Dr. Kapoor", Relationship: 50, Domains: []string{"dosimetry", "quality-assurance"}},
		domain.Mentor{ID: "quinn", Name: "Dr. Quinn", Relationship: 50, Domains: []string{"physics", "treatment-planning"}},
	)
}
