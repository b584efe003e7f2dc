package schema

// PolicyLevel represents a Kubernetes Pod Security Standards level
type PolicyLevel string

const (
	// PolicyLevelBaseline is the minimally restrictive policy level
	PolicyLevelBaseline PolicyLevel = "Baseline"
	// PolicyLevelRestricted is the heavily restricted, hardening-focused level
	PolicyLevelRestricted PolicyLevel = "Restricted"
	// PolicyLevelPrivileged is the unrestricted level (no enforcement)
	PolicyLevelPrivileged PolicyLevel = "Privileged"
)

// PolicyType represents the pod security policy regime of a Kubernetes version
type PolicyType string

const (
	// PolicyTypePSP is the legacy PodSecurityPolicy regime (1.20-1.21)
	PolicyTypePSP PolicyType = "PodSecurityPolicy"
	// PolicyTypePSSAlpha is the Pod Security Standards alpha regime (1.22-1.23)
	PolicyTypePSSAlpha PolicyType = "PodSecurityStandardsAlpha"
	// PolicyTypePSSStable is the Pod Security Standards stable regime (1.24+)
	PolicyTypePSSStable PolicyType = "PodSecurityStandardsStable"
)

// VerdictStatus represents the analyzer's judgment for one security field
type VerdictStatus string

const (
	StatusSecure     VerdictStatus = "secure"
	StatusWarning    VerdictStatus = "warning"
	StatusCritical   VerdictStatus = "critical"
	StatusDeprecated VerdictStatus = "deprecated"
	StatusUnknown    VerdictStatus = "unknown"
	StatusError      VerdictStatus = "error"
	StatusInfo       VerdictStatus = "info"
)

// FieldVerdict is the per-field result of a security analysis
type FieldVerdict struct {
	FieldName      string        `json:"fieldName" yaml:"fieldName"`
	Value          any           `json:"value" yaml:"value"`
	Status         VerdictStatus `json:"status" yaml:"status"`
	Message        string        `json:"message" yaml:"message"`
	Recommendation string        `json:"recommendation" yaml:"recommendation"`
	PolicyLevel    PolicyLevel   `json:"policyLevel,omitempty" yaml:"policyLevel,omitempty"`
	SecurityImpact string        `json:"securityImpact,omitempty" yaml:"securityImpact,omitempty"`
}

// PodSecurityAnalysis aggregates the verdicts for one manifest and version
type PodSecurityAnalysis struct {
	PodYAML           string               `json:"podYaml" yaml:"podYaml"`
	KubernetesVersion string               `json:"kubernetesVersion" yaml:"kubernetesVersion"`
	Results           []FieldVerdict       `json:"results" yaml:"results"`
	OverallScore      float64              `json:"overallScore" yaml:"overallScore"`
	PolicyCompliance  map[PolicyLevel]bool `json:"policyCompliance" yaml:"policyCompliance"`
	Recommendations   []string             `json:"recommendations" yaml:"recommendations"`
	CriticalIssues    []string             `json:"criticalIssues" yaml:"criticalIssues"`
	Warnings          []string             `json:"warnings" yaml:"warnings"`
	FixedYAML         string               `json:"fixedYaml,omitempty" yaml:"fixedYaml,omitempty"`
}

// Chunk type values stored in chunk metadata
const (
	ChunkTypeDescription = "description"
	ChunkTypeExample     = "example"
	ChunkTypePitfalls    = "pitfalls"
	ChunkTypeRemediation = "remediation"
	ChunkTypeSection     = "section"
)

// ChunkMetadata is the typed metadata attached to a retrieval chunk.
// The fixed fields are the ones the core filters and reasons about; Extra
// carries backend-specific passthrough values.
type ChunkMetadata struct {
	FieldName      string            `json:"fieldName,omitempty" yaml:"fieldName,omitempty"`
	PolicyLevel    string            `json:"policyLevel,omitempty" yaml:"policyLevel,omitempty"`
	Version        string            `json:"version,omitempty" yaml:"version,omitempty"`
	ChunkType      string            `json:"chunkType,omitempty" yaml:"chunkType,omitempty"`
	SourceDocument string            `json:"sourceDocument,omitempty" yaml:"sourceDocument,omitempty"`
	Tags           []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Extra          map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Map flattens the metadata into the key/value form the retrieval backend
// stores and filters on. Extra keys never shadow the fixed fields.
func (m ChunkMetadata) Map() map[string]any {
	out := make(map[string]any, 6+len(m.Extra))
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.FieldName != "" {
		out["field_name"] = m.FieldName
	}
	if m.PolicyLevel != "" {
		out["policy_level"] = m.PolicyLevel
	}
	if m.Version != "" {
		out["version"] = m.Version
	}
	if m.ChunkType != "" {
		out["chunk_type"] = m.ChunkType
	}
	if m.SourceDocument != "" {
		out["source_document"] = m.SourceDocument
	}
	if len(m.Tags) > 0 {
		tags := make([]any, len(m.Tags))
		for i, t := range m.Tags {
			tags[i] = t
		}
		out["tags"] = tags
	}
	return out
}

// SecurityChunk is a unit of text plus metadata stored for similarity search
type SecurityChunk struct {
	ID       string        `json:"id" yaml:"id"`
	Content  string        `json:"content" yaml:"content"`
	Metadata ChunkMetadata `json:"metadata" yaml:"metadata"`
}

// SearchResult is one ranked hit from a retrieval query
type SearchResult struct {
	ID         string         `json:"id" yaml:"id"`
	Content    string         `json:"content" yaml:"content"`
	Metadata   map[string]any `json:"metadata" yaml:"metadata"`
	Distance   float64        `json:"distance" yaml:"distance"`
	Collection string         `json:"collection" yaml:"collection"`
}

// PageSection is a single section of a parsed documentation page
type PageSection struct {
	Title   string `json:"title" yaml:"title"`
	Level   int    `json:"level" yaml:"level"`
	Content string `json:"content" yaml:"content"`
}

// ParsedPage is a normalized documentation page produced by the crawler
type ParsedPage struct {
	Title    string            `json:"title" yaml:"title"`
	Content  string            `json:"content" yaml:"content"`
	Sections []PageSection     `json:"sections" yaml:"sections"`
	Metadata map[string]string `json:"metadata" yaml:"metadata"`
	URL      string            `json:"url" yaml:"url"`
	Version  string            `json:"version" yaml:"version"`
}
