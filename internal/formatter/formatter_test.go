package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/alevsk/podsec-advisor/internal/rag"
	"github.com/alevsk/podsec-advisor/internal/schema"
)

func sampleResponse() rag.AnalyzeResponse {
	return rag.AnalyzeResponse{
		Analysis: schema.PodSecurityAnalysis{
			KubernetesVersion: "1.29",
			OverallScore:      50,
			PolicyCompliance: map[schema.PolicyLevel]bool{
				schema.PolicyLevelBaseline:   false,
				schema.PolicyLevelRestricted: false,
			},
			Results: []schema.FieldVerdict{
				{
					FieldName:      "privileged",
					Value:          true,
					Status:         schema.StatusCritical,
					Message:        "Container runs in privileged mode - EXTREMELY DANGEROUS",
					Recommendation: "Set privileged: false",
				},
				{
					FieldName: "runAsNonRoot",
					Value:     true,
					Status:    schema.StatusSecure,
					Message:   "Container enforces a non-root user",
				},
			},
			CriticalIssues: []string{"privileged: Container runs in privileged mode - EXTREMELY DANGEROUS"},
		},
		Advice: rag.Advice{
			Summary:          "Analyzed 2 security fields for Kubernetes 1.29: score 50.0%, 1 critical issues, 0 warnings.",
			ComplianceStatus: "Pod does not meet the Baseline profile",
			NextSteps:        []string{"Fix the 1 critical issue(s) first; they break Baseline compliance"},
		},
		References: []schema.SearchResult{
			{ID: "ref-1", Content: "privileged containers disable isolation", Collection: "kubernetes_security_common"},
		},
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{"json", TypeJSON, false},
		{"yaml", TypeYAML, false},
		{"table", TypeTable, false},
		{"markdown", TypeMarkdown, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseType(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseType(%q) error = nil, want error", tt.input)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseType(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}

func TestNewUnknownType(t *testing.T) {
	if _, err := New("csv", nil); err == nil {
		t.Error("New(csv) error = nil, want error")
	}
}

func TestJSONFormat(t *testing.T) {
	f, err := New(TypeJSON, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := f.Format(sampleResponse())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	var decoded rag.AnalyzeResponse
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Analysis.OverallScore != 50 {
		t.Errorf("round-tripped score = %v", decoded.Analysis.OverallScore)
	}
}

func TestYAMLFormat(t *testing.T) {
	f, err := New(TypeYAML, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := f.Format(sampleResponse())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if _, ok := decoded["analysis"]; !ok {
		t.Errorf("yaml keys = %v, want analysis", decoded)
	}
}

func TestTableFormat(t *testing.T) {
	f, err := New(TypeTable, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := f.Format(sampleResponse())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	for _, want := range []string{
		"POD SECURITY ANALYSIS",
		"FIELD VERDICTS",
		"privileged",
		"CRITICAL",
		"Pod does not meet the Baseline profile",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q", want)
		}
	}
	// References only appear in verbose mode
	if strings.Contains(out, "References:") {
		t.Error("references rendered without Verbose")
	}
}

func TestTableFormatVerbose(t *testing.T) {
	f, err := New(TypeTable, &Options{Verbose: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := f.Format(sampleResponse())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(out, "privileged containers disable isolation") {
		t.Error("verbose output missing references")
	}
}

func TestMarkdownFormat(t *testing.T) {
	f, err := New(TypeMarkdown, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp := sampleResponse()
	resp.FixedYAML = "spec:\n  containers: []"

	out, err := f.Format(resp)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	for _, want := range []string{
		"# Pod Security Analysis",
		"## Advice",
		"## Suggested manifest",
		"```yaml",
		"containers: []",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestAdviceTextIncludesNarrativeError(t *testing.T) {
	resp := sampleResponse()
	resp.NarrativeError = "narrative requested but no LLM is configured"

	out := adviceText(resp)
	if !strings.Contains(out, "Note: narrative requested but no LLM is configured") {
		t.Errorf("advice text = %q", out)
	}
}
