package formatter

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/alevsk/podsec-advisor/internal/rag"
	"github.com/alevsk/podsec-advisor/internal/schema"
)

// Table implements table formatting
type Table struct {
	opts *Options
}

// Markdown implements markdown formatting
type Markdown struct {
	opts *Options
}

func buildSummaryTable(data rag.AnalyzeResponse) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateColumns = true
	t.SetTitle("POD SECURITY ANALYSIS")

	t.AppendRow(table.Row{"Kubernetes version", data.Analysis.KubernetesVersion})
	t.AppendRow(table.Row{"Security score", fmt.Sprintf("%.1f%%", data.Analysis.OverallScore)})
	t.AppendRow(table.Row{"Baseline compliant", data.Analysis.PolicyCompliance[schema.PolicyLevelBaseline]})
	t.AppendRow(table.Row{"Restricted compliant", data.Analysis.PolicyCompliance[schema.PolicyLevelRestricted]})
	t.AppendRow(table.Row{"Critical issues", len(data.Analysis.CriticalIssues)})
	t.AppendRow(table.Row{"Warnings", len(data.Analysis.Warnings)})
	if data.VersionNote != "" {
		t.AppendRow(table.Row{"Version note", data.VersionNote})
	}
	return t
}

func buildVerdictTable(data rag.AnalyzeResponse) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateColumns = true
	t.SetTitle("FIELD VERDICTS")

	t.AppendHeader(table.Row{"FIELD", "VALUE", "STATUS", "MESSAGE", "RECOMMENDATION"})
	for _, r := range data.Analysis.Results {
		t.AppendRow(table.Row{
			r.FieldName,
			fmt.Sprintf("%v", r.Value),
			strings.ToUpper(string(r.Status)),
			r.Message,
			r.Recommendation,
		})
	}
	return t
}

func adviceText(data rag.AnalyzeResponse) string {
	var b strings.Builder
	b.WriteString(data.Advice.Summary)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Compliance: %s\n", data.Advice.ComplianceStatus)

	if len(data.Advice.NextSteps) > 0 {
		b.WriteString("Next steps:\n")
		for i, step := range data.Advice.NextSteps {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
		}
	}
	if data.Narrative != "" {
		fmt.Fprintf(&b, "\n%s\n", data.Narrative)
	}
	if data.NarrativeError != "" {
		fmt.Fprintf(&b, "\nNote: %s\n", data.NarrativeError)
	}
	return b.String()
}

// Format renders summary and verdict tables with advice text
func (t *Table) Format(data rag.AnalyzeResponse) (string, error) {
	out := buildSummaryTable(data).Render() + "\n\n" + buildVerdictTable(data).Render() + "\n\n" + adviceText(data)
	if t.opts.Verbose && len(data.References) > 0 {
		out += "\n" + referencesText(data.References)
	}
	return out, nil
}

// Format renders the same content with markdown tables
func (m *Markdown) Format(data rag.AnalyzeResponse) (string, error) {
	var b strings.Builder
	b.WriteString("# Pod Security Analysis\n\n")
	b.WriteString(buildSummaryTable(data).RenderMarkdown())
	b.WriteString("\n\n")
	b.WriteString(buildVerdictTable(data).RenderMarkdown())
	b.WriteString("\n\n## Advice\n\n")
	b.WriteString(adviceText(data))
	if m.opts.Verbose && len(data.References) > 0 {
		b.WriteString("\n## References\n\n")
		b.WriteString(referencesText(data.References))
	}
	if data.FixedYAML != "" {
		b.WriteString("\n## Suggested manifest\n\n```yaml\n")
		b.WriteString(data.FixedYAML)
		b.WriteString("\n```\n")
	}
	return b.String(), nil
}

func referencesText(refs []schema.SearchResult) string {
	var b strings.Builder
	b.WriteString("References:\n")
	for i, r := range refs {
		content := r.Content
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		fmt.Fprintf(&b, "  [%d] (%s) %s\n", i+1, r.Collection, strings.ReplaceAll(content, "\n", " "))
	}
	return b.String()
}
