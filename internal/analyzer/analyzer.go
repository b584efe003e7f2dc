// Package analyzer inspects Pod manifests for security misconfigurations.
// Verdicts are produced by a static rule table, so repeated analysis of the
// same manifest and version yields identical output.
package analyzer

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/alevsk/podsec-advisor/internal/catalog"
	"github.com/alevsk/podsec-advisor/internal/schema"
	"github.com/alevsk/podsec-advisor/internal/version"
)

// hostFields are pod-spec level flags checked in fixed order
var hostFields = []string{"hostPID", "hostIPC", "hostNetwork"}

// Analyzer evaluates Pod manifests against the security field catalog
type Analyzer struct {
	catalog  *catalog.Catalog
	registry *version.Registry
}

// New creates an analyzer backed by the given catalog and version registry
func New(c *catalog.Catalog, r *version.Registry) *Analyzer {
	return &Analyzer{catalog: c, registry: r}
}

// Analyze parses a Pod manifest and evaluates every recognized security
// field for the given Kubernetes version. Parse failures and missing spec
// sections produce a terminal analysis with a single critical issue and a
// zero score rather than an error.
func (a *Analyzer) Analyze(yamlText, k8sVersion string) schema.PodSecurityAnalysis {
	var pod map[string]any
	if err := yaml.Unmarshal([]byte(yamlText), &pod); err != nil || pod == nil {
		return terminal(yamlText, k8sVersion, "Invalid YAML format", "Fix YAML syntax errors")
	}

	spec, ok := pod["spec"].(map[string]any)
	if !ok {
		return terminal(yamlText, k8sVersion, "Missing spec section", "Add spec section to Pod")
	}

	var results []schema.FieldVerdict

	if podCtx, ok := spec["securityContext"].(map[string]any); ok {
		for _, key := range sortedKeys(podCtx) {
			results = append(results, a.AnalyzeField(key, podCtx[key], k8sVersion))
		}
	}

	if containers, ok := spec["containers"].([]any); ok {
		for _, c := range containers {
			container, ok := c.(map[string]any)
			if !ok {
				continue
			}
			ctx, ok := container["securityContext"].(map[string]any)
			if !ok {
				continue
			}
			for _, key := range sortedKeys(ctx) {
				results = append(results, a.AnalyzeField(key, ctx[key], k8sVersion))
			}
		}
	}

	for _, f := range hostFields {
		if v, ok := spec[f]; ok {
			results = append(results, a.AnalyzeField(f, v, k8sVersion))
		}
	}

	return a.aggregate(yamlText, k8sVersion, results)
}

// AnalyzeField evaluates a single field value for a Kubernetes version.
// Unknown fields get an unknown verdict; fields deprecated at or before the
// version short-circuit to a deprecated verdict without running their rule.
func (a *Analyzer) AnalyzeField(fieldName string, value any, k8sVersion string) schema.FieldVerdict {
	spec, ok := a.catalog.ByName(fieldName)
	if !ok {
		return schema.FieldVerdict{
			FieldName:      fieldName,
			Value:          value,
			Status:         schema.StatusUnknown,
			Message:        fmt.Sprintf("Unknown security field: %s", fieldName),
			Recommendation: "Verify this field name against the Pod securityContext schema",
		}
	}

	if spec.DeprecatedIn != "" && version.Compare(k8sVersion, spec.DeprecatedIn) >= 0 {
		return schema.FieldVerdict{
			FieldName:      fieldName,
			Value:          value,
			Status:         schema.StatusDeprecated,
			Message:        fmt.Sprintf("Field %s is deprecated in version %s", fieldName, spec.DeprecatedIn),
			Recommendation: "Use the recommended replacement for this field",
			PolicyLevel:    spec.PolicyLevel,
			SecurityImpact: spec.SecurityImpact,
		}
	}

	rule, ok := rules[fieldName]
	if !ok {
		rule = ruleGeneric
	}
	return rule(fieldName, value, spec)
}

func (a *Analyzer) aggregate(yamlText, k8sVersion string, results []schema.FieldVerdict) schema.PodSecurityAnalysis {
	analysis := schema.PodSecurityAnalysis{
		PodYAML:           yamlText,
		KubernetesVersion: k8sVersion,
		Results:           results,
	}

	secure := 0
	hasCritical := false
	hasWarning := false
	var recommendations []string

	for _, r := range results {
		switch r.Status {
		case schema.StatusSecure:
			secure++
		case schema.StatusCritical:
			hasCritical = true
			analysis.CriticalIssues = append(analysis.CriticalIssues,
				fmt.Sprintf("%s: %s", r.FieldName, r.Message))
		case schema.StatusWarning, schema.StatusError, schema.StatusDeprecated:
			hasWarning = true
			analysis.Warnings = append(analysis.Warnings,
				fmt.Sprintf("%s: %s", r.FieldName, r.Message))
		}
		if r.Recommendation != "" {
			recommendations = append(recommendations, r.Recommendation)
		}
	}

	if len(results) > 0 {
		analysis.OverallScore = float64(secure) / float64(len(results)) * 100
	}

	analysis.PolicyCompliance = map[schema.PolicyLevel]bool{
		schema.PolicyLevelBaseline:   !hasCritical,
		schema.PolicyLevelRestricted: !hasCritical && !hasWarning,
	}
	analysis.Recommendations = dedupe(recommendations)
	return analysis
}

// terminal builds the analysis returned when the manifest cannot be
// evaluated at all
func terminal(yamlText, k8sVersion, issue, recommendation string) schema.PodSecurityAnalysis {
	return schema.PodSecurityAnalysis{
		PodYAML:           yamlText,
		KubernetesVersion: k8sVersion,
		Results:           []schema.FieldVerdict{},
		OverallScore:      0,
		PolicyCompliance: map[schema.PolicyLevel]bool{
			schema.PolicyLevelBaseline:   false,
			schema.PolicyLevelRestricted: false,
		},
		Recommendations: []string{recommendation},
		CriticalIssues:  []string{issue},
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// dedupe removes duplicates while keeping first-occurrence order
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
