package checklist

import (
	"context"
	"errors"
	"testing"
)

type fakeGenerator struct {
	response string
	err      error
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	return f.response, f.err
}

func TestHeuristicClassify(t *testing.T) {
	tests := []struct {
		name         string
		problem      string
		wantCategory string
		wantSeverity string
	}{
		{
			"privileged container",
			"container runs in privileged mode",
			CategoryPodSecurity,
			SeverityCritical,
		},
		{
			"rbac wildcard",
			"the role binding grants wildcard verbs",
			CategoryRBAC,
			SeverityHigh,
		},
		{
			"exposed secret",
			"a credential is stored in a config map",
			CategorySecrets,
			SeverityMedium,
		},
		{
			"network exposure",
			"service is exposed to public ingress traffic",
			CategoryNetwork,
			SeverityHigh,
		},
		{
			"nothing recognizable",
			"something feels off",
			CategoryGeneral,
			SeverityMedium,
		},
	}

	c := NewClassifier(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(context.Background(), tt.problem)
			if got.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Severity != tt.wantSeverity {
				t.Errorf("severity = %q, want %q", got.Severity, tt.wantSeverity)
			}
		})
	}
}

func TestClassifyWithLLM(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeGenerator
		want Classification
	}{
		{
			"plain json overrides heuristics",
			&fakeGenerator{response: `{"category": "network", "severity": "high"}`},
			Classification{Category: CategoryNetwork, Severity: SeverityHigh},
		},
		{
			"fenced json is extracted",
			&fakeGenerator{response: "Here is the classification:\n```json\n{\"category\": \"rbac\", \"severity\": \"low\"}\n```"},
			Classification{Category: CategoryRBAC, Severity: SeverityLow},
		},
		{
			"llm error falls back to heuristics",
			&fakeGenerator{err: errors.New("rate limited")},
			Classification{Category: CategoryPodSecurity, Severity: SeverityCritical},
		},
		{
			"non-json response falls back",
			&fakeGenerator{response: "this looks like a pod security issue"},
			Classification{Category: CategoryPodSecurity, Severity: SeverityCritical},
		},
		{
			"invalid category falls back",
			&fakeGenerator{response: `{"category": "quantum", "severity": "high"}`},
			Classification{Category: CategoryPodSecurity, Severity: SeverityCritical},
		},
		{
			"invalid severity falls back",
			&fakeGenerator{response: `{"category": "network", "severity": "apocalyptic"}`},
			Classification{Category: CategoryPodSecurity, Severity: SeverityCritical},
		},
	}

	// Heuristics on this problem give pod_security/critical
	const problem = "container runs in privileged mode"

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(tt.llm)
			got := c.Classify(context.Background(), problem)
			if got != tt.want {
				t.Errorf("Classify = %+v, want %+v", got, tt.want)
			}
		})
	}
}
