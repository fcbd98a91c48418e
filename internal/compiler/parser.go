package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/dialectic/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of an authored graph.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// Parser is responsible for converting raw bytes into a Graph.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes data in the given format, normalises the graph and checks its
// structural invariants. Unknown fields are rejected so typos in effect names
// surface at load time.
func (p *Parser) Parse(data []byte, format Format) (*domain.Graph, error) {
	var g domain.Graph
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&g); err != nil {
			return nil, fmt.Errorf("failed to parse graph: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&g); err != nil {
			return nil, fmt.Errorf("failed to parse graph: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported graph format %q", format)
	}

	g.Normalize()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// ParseFile decodes data using the format implied by path.
func (p *Parser) ParseFile(path string, data []byte) (*domain.Graph, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("unsupported graph file %s", path)
	}
	g, err := p.Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
