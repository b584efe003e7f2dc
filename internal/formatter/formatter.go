// Package formatter renders guidance responses for the CLI in JSON, YAML,
// table and markdown forms.
package formatter

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/alevsk/podsec-advisor/internal/rag"
)

// Formatter defines the interface for formatting analysis output
type Formatter interface {
	Format(data rag.AnalyzeResponse) (string, error)
}

// Type represents the type of formatter
type Type string

const (
	// TypeJSON formats data as JSON
	TypeJSON Type = "json"
	// TypeYAML formats data as YAML
	TypeYAML Type = "yaml"
	// TypeTable formats data as a table
	TypeTable Type = "table"
	// TypeMarkdown formats data as markdown
	TypeMarkdown Type = "markdown"
)

// Options configures formatting behavior
type Options struct {
	// Verbose includes retrieved references in table and markdown output
	Verbose bool
}

// JSON implements JSON formatting
type JSON struct {
	opts *Options
}

// YAML implements YAML formatting
type YAML struct {
	opts *Options
}

// Format formats the response as indented JSON
func (j *JSON) Format(data rag.AnalyzeResponse) (string, error) {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error formatting as JSON: %w", err)
	}
	return string(bytes), nil
}

// Format formats the response as YAML
func (y *YAML) Format(data rag.AnalyzeResponse) (string, error) {
	bytes, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("error formatting as YAML: %w", err)
	}
	return string(bytes), nil
}

// ParseType converts a string to a Type
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeJSON, TypeYAML, TypeTable, TypeMarkdown:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown formatter type: %s", s)
	}
}

// New creates a new formatter of the specified type
func New(t Type, opts *Options) (Formatter, error) {
	if opts == nil {
		opts = &Options{}
	}
	switch t {
	case TypeJSON:
		return &JSON{opts: opts}, nil
	case TypeYAML:
		return &YAML{opts: opts}, nil
	case TypeTable:
		return &Table{opts: opts}, nil
	case TypeMarkdown:
		return &Markdown{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", t)
	}
}
