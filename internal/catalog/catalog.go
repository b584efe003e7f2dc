// Package catalog holds the static knowledge base of Kubernetes Pod
// security fields. The data is read-only for the process lifetime and feeds
// both the analyzer's rule table and the retrieval store's common collection.
package catalog

import "github.com/alevsk/podsec-advisor/internal/schema"

// FieldSpec describes one security-relevant Pod field
type FieldSpec struct {
	FieldName        string             `json:"fieldName" yaml:"fieldName"`
	FieldPath        string             `json:"fieldPath" yaml:"fieldPath"`
	Description      string             `json:"description" yaml:"description"`
	PolicyLevel      schema.PolicyLevel `json:"policyLevel" yaml:"policyLevel"`
	VersionAdded     string             `json:"versionAdded,omitempty" yaml:"versionAdded,omitempty"`
	DeprecatedIn     string             `json:"deprecatedIn,omitempty" yaml:"deprecatedIn,omitempty"`
	DefaultValue     string             `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	AcceptableValues []string           `json:"acceptableValues,omitempty" yaml:"acceptableValues,omitempty"`
	SecurityImpact   string             `json:"securityImpact" yaml:"securityImpact"`
	YAMLExample      string             `json:"yamlExample,omitempty" yaml:"yamlExample,omitempty"`
	CommonPitfalls   []string           `json:"commonPitfalls,omitempty" yaml:"commonPitfalls,omitempty"`
	RemediationSteps []string           `json:"remediationSteps,omitempty" yaml:"remediationSteps,omitempty"`
	RelatedFields    []string           `json:"relatedFields,omitempty" yaml:"relatedFields,omitempty"`
	CVEReferences    []string           `json:"cveReferences,omitempty" yaml:"cveReferences,omitempty"`
	SourceDocument   string             `json:"sourceDocument" yaml:"sourceDocument"`
}

// Catalog provides lookup over the static field table
type Catalog struct {
	ordered []FieldSpec
	byName  map[string]FieldSpec
}

// New creates a catalog from the static security field table
func New() *Catalog {
	return From(securityFields)
}

// From creates a catalog from an explicit field table, preserving order
func From(fields []FieldSpec) *Catalog {
	c := &Catalog{
		ordered: fields,
		byName:  make(map[string]FieldSpec, len(fields)),
	}
	for _, f := range fields {
		c.byName[f.FieldName] = f
	}
	return c
}

// All returns every field spec in table order
func (c *Catalog) All() []FieldSpec {
	out := make([]FieldSpec, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// ByName returns the spec for a field name, or false if unknown
func (c *Catalog) ByName(name string) (FieldSpec, bool) {
	f, ok := c.byName[name]
	return f, ok
}

// Names returns all field names in table order
func (c *Catalog) Names() []string {
	out := make([]string, len(c.ordered))
	for i, f := range c.ordered {
		out[i] = f.FieldName
	}
	return out
}
