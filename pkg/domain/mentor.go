package domain

// Mentor is a non-player character the player converses with.
type Mentor struct {
	ID           string   `json:"id" yaml:"id" mapstructure:"id"`
	Name         string   `json:"name" yaml:"name" mapstructure:"name"`
	Relationship int      `json:"relationship" yaml:"relationship" mapstructure:"relationship"`
	Domains      []string `json:"domains,omitempty" yaml:"domains,omitempty" mapstructure:"domains"`
}

// Clone returns a copy of the mentor that does not share the domains slice.
func (m Mentor) Clone() Mentor {
	next := m
	if m.Domains != nil {
		next.Domains = append([]string(nil), m.Domains...)
	}
	return next
}
