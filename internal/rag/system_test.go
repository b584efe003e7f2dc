package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alevsk/podsec-advisor/internal/analyzer"
	"github.com/alevsk/podsec-advisor/internal/catalog"
	"github.com/alevsk/podsec-advisor/internal/schema"
	"github.com/alevsk/podsec-advisor/internal/vectorstore"
	"github.com/alevsk/podsec-advisor/internal/version"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Generate(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.response, f.err
}

func newTestSystem(llm LLM) (*System, *vectorstore.Store) {
	registry := version.NewRegistry()
	cat := catalog.New()
	store := vectorstore.NewStore(vectorstore.NewMemory(), vectorstore.NewHashEmbedder(64), registry, cat)
	return New(analyzer.New(cat, registry), store, registry, cat, llm), store
}

const riskyManifest = `spec:
  containers:
    - name: app
      securityContext:
        privileged: true
        allowPrivilegeEscalation: true
`

func TestAnalyzePodDeterministicWithoutLLM(t *testing.T) {
	s, store := newTestSystem(nil)
	ctx := context.Background()

	if err := store.InitializeCommon(ctx); err != nil {
		t.Fatalf("InitializeCommon: %v", err)
	}

	resp := s.AnalyzePod(ctx, riskyManifest, "1.29", schema.PolicyLevelBaseline, false)

	if len(resp.Analysis.CriticalIssues) != 1 {
		t.Errorf("CriticalIssues = %v, want 1", resp.Analysis.CriticalIssues)
	}
	if resp.Advice.Summary == "" || resp.Advice.ComplianceStatus == "" {
		t.Error("advice missing deterministic fields")
	}
	if len(resp.References) == 0 {
		t.Error("no references retrieved for insecure fields")
	}
	if resp.Narrative != "" || resp.NarrativeError != "" {
		t.Errorf("narrative fields set without useLLM: %q / %q", resp.Narrative, resp.NarrativeError)
	}
}

func TestAnalyzePodNilLLMRequested(t *testing.T) {
	s, _ := newTestSystem(nil)

	resp := s.AnalyzePod(context.Background(), riskyManifest, "1.29", schema.PolicyLevelBaseline, true)

	if resp.NarrativeError == "" {
		t.Error("NarrativeError empty when narrative requested without an LLM")
	}
	if resp.Narrative != "" {
		t.Errorf("Narrative = %q, want empty", resp.Narrative)
	}
	// The deterministic analysis is unaffected
	if len(resp.Analysis.Results) == 0 {
		t.Error("analysis results missing")
	}
}

func TestAnalyzePodLLMFailureDegrades(t *testing.T) {
	llm := &fakeLLM{err: errors.New("model overloaded")}
	s, _ := newTestSystem(llm)

	resp := s.AnalyzePod(context.Background(), riskyManifest, "1.29", schema.PolicyLevelRestricted, true)

	if !strings.Contains(resp.NarrativeError, "model overloaded") {
		t.Errorf("NarrativeError = %q, want generation error", resp.NarrativeError)
	}
	if resp.Narrative != "" || resp.FixedYAML != "" {
		t.Error("narrative output present despite LLM failure")
	}
	if len(resp.Analysis.CriticalIssues) != 1 {
		t.Errorf("CriticalIssues = %v, want deterministic result intact", resp.Analysis.CriticalIssues)
	}
}

func TestAnalyzePodNarrativeAndFixedYAML(t *testing.T) {
	llm := &fakeLLM{response: "```yaml\nspec:\n  containers: []\n```"}
	s, _ := newTestSystem(llm)

	resp := s.AnalyzePod(context.Background(), riskyManifest, "1.29", schema.PolicyLevelBaseline, true)

	if resp.Narrative == "" {
		t.Error("Narrative empty with working LLM")
	}
	if strings.Contains(resp.FixedYAML, "```") {
		t.Errorf("FixedYAML = %q, code fence not stripped", resp.FixedYAML)
	}
	if !strings.Contains(resp.FixedYAML, "containers: []") {
		t.Errorf("FixedYAML = %q", resp.FixedYAML)
	}
	// Narrative plus fixed manifest
	if llm.calls != 2 {
		t.Errorf("LLM calls = %d, want 2", llm.calls)
	}
}

func TestAnalyzePodSecureManifestSkipsFixedYAML(t *testing.T) {
	llm := &fakeLLM{response: "narrative text"}
	s, _ := newTestSystem(llm)

	secure := `spec:
  containers:
    - name: app
      securityContext:
        privileged: false
        allowPrivilegeEscalation: false
        runAsNonRoot: true
`
	resp := s.AnalyzePod(context.Background(), secure, "1.29", schema.PolicyLevelBaseline, true)

	if resp.FixedYAML != "" {
		t.Errorf("FixedYAML = %q for a manifest with no issues", resp.FixedYAML)
	}
	if llm.calls != 1 {
		t.Errorf("LLM calls = %d, want narrative only", llm.calls)
	}
}

func TestAnswerQuestionEmptyStore(t *testing.T) {
	s, _ := newTestSystem(nil)

	resp := s.AnswerQuestion(context.Background(), "how do I drop capabilities?", "1.24", "", false)

	if !strings.Contains(resp.Answer, "No relevant documentation found") {
		t.Errorf("Answer = %q, want empty-store fallback", resp.Answer)
	}
	if len(resp.References) != 0 {
		t.Errorf("References = %v, want none", resp.References)
	}
}

func TestAnswerQuestionWithContent(t *testing.T) {
	s, store := newTestSystem(nil)
	ctx := context.Background()

	if err := store.InitializeCommon(ctx); err != nil {
		t.Fatalf("InitializeCommon: %v", err)
	}

	resp := s.AnswerQuestion(ctx, "running containers as a non root user", "1.24", "", false)

	if len(resp.References) == 0 {
		t.Fatal("no references retrieved")
	}
	if !strings.Contains(resp.Answer, "Kubernetes 1.24 documentation") {
		t.Errorf("Answer = %q, want version-scoped preamble", resp.Answer)
	}
}

func TestFieldGuidanceUnknownField(t *testing.T) {
	s, _ := newTestSystem(nil)

	_, err := s.FieldGuidance(context.Background(), "notAField", "1.24", false)

	var unknown *UnknownFieldError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want UnknownFieldError", err)
	}
	if unknown.Field != "notAField" {
		t.Errorf("Field = %q", unknown.Field)
	}
	if len(unknown.Available) == 0 {
		t.Error("Available fields empty")
	}
}

func TestFieldGuidanceGroupsByChunkType(t *testing.T) {
	s, store := newTestSystem(nil)
	ctx := context.Background()

	if err := store.InitializeCommon(ctx); err != nil {
		t.Fatalf("InitializeCommon: %v", err)
	}

	resp, err := s.FieldGuidance(ctx, "privileged", "", false)
	if err != nil {
		t.Fatalf("FieldGuidance: %v", err)
	}

	if resp.Spec.FieldName != "privileged" {
		t.Errorf("Spec.FieldName = %q", resp.Spec.FieldName)
	}
	if len(resp.Guidance) == 0 {
		t.Fatal("Guidance empty")
	}
	if _, ok := resp.Guidance[schema.ChunkTypeDescription]; !ok {
		t.Errorf("Guidance keys = %v, want a description group", keysOf(resp.Guidance))
	}
}

func keysOf(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestExtractYAML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare yaml", "spec: {}", "spec: {}"},
		{"yaml fence", "```yaml\nspec: {}\n```", "spec: {}"},
		{"plain fence", "```\nspec: {}\n```", "spec: {}"},
		{"surrounding whitespace", "\n\n```yaml\nspec: {}\n```\n", "spec: {}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractYAML(tt.input); got != tt.want {
				t.Errorf("extractYAML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
