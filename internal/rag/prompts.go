package rag

import (
	"fmt"
	"strings"

	"github.com/alevsk/podsec-advisor/internal/schema"
)

const systemPrompt = "You are a Kubernetes Pod security expert. Answer " +
	"using only the provided documentation context and analysis results. " +
	"Be precise about which Kubernetes version a recommendation applies to. " +
	"When asked for YAML, output a complete, valid manifest."

func analysisPrompt(analysis schema.PodSecurityAnalysis, references, targetLevel string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A Pod manifest was analyzed for Kubernetes %s against the %s profile.\n\n",
		analysis.KubernetesVersion, targetLevel)
	fmt.Fprintf(&b, "Security score: %.1f%%\n", analysis.OverallScore)

	if len(analysis.CriticalIssues) > 0 {
		b.WriteString("\nCritical issues:\n")
		for _, issue := range analysis.CriticalIssues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}
	if len(analysis.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range analysis.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	if references != "" {
		fmt.Fprintf(&b, "\nDocumentation context:\n%s\n", references)
	}

	b.WriteString("\nExplain the security posture of this Pod, why each issue matters, " +
		"and how to remediate it for this Kubernetes version.")
	return b.String()
}

func questionPrompt(question, references, k8sVersion string) string {
	var b strings.Builder
	if k8sVersion != "" {
		fmt.Fprintf(&b, "The question concerns Kubernetes %s.\n\n", k8sVersion)
	}
	if references != "" {
		fmt.Fprintf(&b, "Documentation context:\n%s\n\n", references)
	}
	fmt.Fprintf(&b, "Question: %s\n", question)
	return b.String()
}

func fieldGuidancePrompt(fieldName, references, k8sVersion string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide configuration guidance for the Pod security field %q", fieldName)
	if k8sVersion != "" {
		fmt.Fprintf(&b, " on Kubernetes %s", k8sVersion)
	}
	b.WriteString(".\n")
	if references != "" {
		fmt.Fprintf(&b, "\nDocumentation context:\n%s\n", references)
	}
	b.WriteString("\nCover what the field does, the secure value, common mistakes and a YAML example.")
	return b.String()
}

func fixedYAMLPrompt(analysis schema.PodSecurityAnalysis) string {
	var b strings.Builder
	b.WriteString("Rewrite this Pod manifest to fix the listed security issues. " +
		"Keep the workload definition unchanged; only adjust security settings. " +
		"Output only the YAML.\n\nManifest:\n")
	b.WriteString(analysis.PodYAML)
	b.WriteString("\nIssues:\n")
	for _, issue := range analysis.CriticalIssues {
		fmt.Fprintf(&b, "- %s\n", issue)
	}
	for _, w := range analysis.Warnings {
		fmt.Fprintf(&b, "- %s\n", w)
	}
	return b.String()
}

// formatReferences renders search results as a compact context block for
// prompts, deduplicating by chunk ID
func formatReferences(results []schema.SearchResult, limit int) string {
	var b strings.Builder
	seen := make(map[string]bool)
	n := 0
	for _, r := range results {
		if seen[r.ID] || (limit > 0 && n >= limit) {
			continue
		}
		seen[r.ID] = true
		n++
		fmt.Fprintf(&b, "[%d] %s\n", n, strings.TrimSpace(r.Content))
	}
	return b.String()
}
