package loam

// StageMetadata is the frontmatter of a markdown stage document.
// The document body becomes the stage text.
type StageMetadata struct {
	ID    string `json:"id" mapstructure:"id"`
	Graph string `json:"graph" mapstructure:"graph"`

	// Start marks the entry stage of its graph. Domain and Difficulty are read from it.
	Start      bool   `json:"start" mapstructure:"start"`
	Domain     string `json:"domain" mapstructure:"domain"`
	Difficulty any    `json:"difficulty" mapstructure:"difficulty"`

	Speaker    string `json:"speaker" mapstructure:"speaker"`
	Tangent    string `json:"tangent" mapstructure:"tangent"`
	Boast      string `json:"boast" mapstructure:"boast"`
	Conclusion bool   `json:"conclusion" mapstructure:"conclusion"`

	// Options stay loosely typed so numeric effects survive strict-mode json.Number values.
	Options []any `json:"options" mapstructure:"options"`

	// To is shorthand for a single "continue" option.
	To string `json:"to" mapstructure:"to"`
}
