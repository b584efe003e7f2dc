package rag

import (
	"fmt"

	"github.com/alevsk/podsec-advisor/internal/schema"
)

// Advice is the deterministic guidance derived from an analysis. It is
// always populated, whether or not an LLM narrative is requested.
type Advice struct {
	Summary          string   `json:"summary"`
	CriticalGuidance []string `json:"criticalGuidance,omitempty"`
	WarningGuidance  []string `json:"warningGuidance,omitempty"`
	Recommendations  []string `json:"recommendations,omitempty"`
	ComplianceStatus string   `json:"complianceStatus"`
	NextSteps        []string `json:"nextSteps"`
}

// buildAdvice derives advice from the analysis results in verdict order
func buildAdvice(analysis schema.PodSecurityAnalysis, targetLevel schema.PolicyLevel) Advice {
	advice := Advice{
		Summary: fmt.Sprintf(
			"Analyzed %d security fields for Kubernetes %s: score %.1f%%, %d critical issues, %d warnings.",
			len(analysis.Results), analysis.KubernetesVersion, analysis.OverallScore,
			len(analysis.CriticalIssues), len(analysis.Warnings)),
		Recommendations: analysis.Recommendations,
	}

	for _, r := range analysis.Results {
		line := fmt.Sprintf("%s: %s. %s", r.FieldName, r.Message, r.Recommendation)
		switch r.Status {
		case schema.StatusCritical:
			advice.CriticalGuidance = append(advice.CriticalGuidance, line)
		case schema.StatusWarning, schema.StatusError, schema.StatusDeprecated:
			advice.WarningGuidance = append(advice.WarningGuidance, line)
		}
	}

	advice.ComplianceStatus = complianceStatus(analysis, targetLevel)
	advice.NextSteps = nextSteps(analysis)
	return advice
}

func complianceStatus(analysis schema.PodSecurityAnalysis, targetLevel schema.PolicyLevel) string {
	switch targetLevel {
	case schema.PolicyLevelRestricted:
		if analysis.PolicyCompliance[schema.PolicyLevelRestricted] {
			return "Pod meets the Restricted profile"
		}
		if analysis.PolicyCompliance[schema.PolicyLevelBaseline] {
			return "Pod meets Baseline but not the Restricted profile"
		}
		return "Pod does not meet the Baseline profile"
	case schema.PolicyLevelPrivileged:
		return "Privileged profile imposes no restrictions"
	default:
		if analysis.PolicyCompliance[schema.PolicyLevelBaseline] {
			return "Pod meets the Baseline profile"
		}
		return "Pod does not meet the Baseline profile"
	}
}

func nextSteps(analysis schema.PodSecurityAnalysis) []string {
	var steps []string
	if len(analysis.CriticalIssues) > 0 {
		steps = append(steps, fmt.Sprintf("Fix the %d critical issue(s) first; they break Baseline compliance", len(analysis.CriticalIssues)))
	}
	if len(analysis.Warnings) > 0 {
		steps = append(steps, fmt.Sprintf("Address the %d warning(s) to reach the Restricted profile", len(analysis.Warnings)))
	}
	if len(analysis.Results) == 0 {
		steps = append(steps, "Add an explicit securityContext to the pod and its containers")
	}
	steps = append(steps,
		"Enforce the target profile with the Pod Security admission controller",
		"Re-run the analysis after applying changes")
	return steps
}

// contextualAnswer builds a deterministic answer from retrieved chunks when
// no LLM narrative is available
func contextualAnswer(question, k8sVersion string, results []schema.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No relevant documentation found for %q. Try rephrasing the question or ingest documentation first.", question)
	}

	scope := "the Kubernetes documentation"
	if k8sVersion != "" {
		scope = fmt.Sprintf("the Kubernetes %s documentation", k8sVersion)
	}

	answer := fmt.Sprintf("Based on %s, the most relevant guidance for %q is:\n", scope, question)
	limit := 3
	if len(results) < limit {
		limit = len(results)
	}
	for i := 0; i < limit; i++ {
		answer += fmt.Sprintf("\n%d. %s\n", i+1, results[i].Content)
	}
	return answer
}
