package checklist

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/alevsk/podsec-advisor/internal/logger"
)

// Generator produces text from a prompt. It matches the LLM interface of
// the guidance system so the same client can back both.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Classifier assigns a category and severity to a problem description.
// Keyword heuristics always run; when an LLM is present its JSON
// classification overrides the heuristics, falling back on any error.
type Classifier struct {
	llm Generator
}

// NewClassifier creates a classifier; llm may be nil
func NewClassifier(llm Generator) *Classifier {
	return &Classifier{llm: llm}
}

// Classification is the category and severity assigned to a problem
type Classification struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
}

// Classify determines category and severity for a problem description
func (c *Classifier) Classify(ctx context.Context, problem string) Classification {
	result := heuristicClassify(problem)
	if c.llm == nil {
		return result
	}

	llmResult, err := c.llmClassify(ctx, problem)
	if err != nil {
		logger.Warn().Err(err).Msg("llm classification failed, using heuristics")
		return result
	}
	return llmResult
}

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryRBAC, []string{"rbac", "role", "binding", "service account", "serviceaccount", "permission"}},
	{CategoryNetwork, []string{"network", "ingress", "egress", "traffic", "firewall", "expose"}},
	{CategorySecrets, []string{"secret", "credential", "password", "token", "api key"}},
	{CategoryPodSecurity, []string{"pod", "container", "privileged", "root", "securitycontext",
		"security context", "capabilit", "seccomp", "apparmor", "host"}},
}

var severityKeywords = []struct {
	severity string
	keywords []string
}{
	{SeverityCritical, []string{"privileged", "root", "breach", "compromise", "exploit", "critical"}},
	{SeverityHigh, []string{"exposed", "public", "escalation", "hostnetwork", "hostpid", "wildcard"}},
	{SeverityMedium, []string{"warning", "writable", "missing", "default"}},
}

func heuristicClassify(problem string) Classification {
	lower := strings.ToLower(problem)

	result := Classification{Category: CategoryGeneral, Severity: SeverityMedium}
	for _, c := range categoryKeywords {
		if containsAny(lower, c.keywords) {
			result.Category = c.category
			break
		}
	}
	for _, s := range severityKeywords {
		if containsAny(lower, s.keywords) {
			result.Severity = s.severity
			break
		}
	}
	return result
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

func (c *Classifier) llmClassify(ctx context.Context, problem string) (Classification, error) {
	prompt := "Classify this Kubernetes security problem. Respond with a JSON object " +
		`{"category": one of pod_security|rbac|network|secrets|general, ` +
		`"severity": one of low|medium|high|critical}. Problem: ` + problem

	raw, err := c.llm.Generate(ctx, prompt)
	if err != nil {
		return Classification{}, err
	}

	// Models often wrap JSON in prose or code fences
	match := jsonObjectPattern.FindString(raw)
	if match == "" {
		return Classification{}, errInvalidClassification(raw)
	}

	var result Classification
	if err := json.Unmarshal([]byte(match), &result); err != nil {
		return Classification{}, err
	}
	if !validCategory(result.Category) || !validSeverity(result.Severity) {
		return Classification{}, errInvalidClassification(match)
	}
	return result, nil
}

type invalidClassificationError string

func errInvalidClassification(raw string) error {
	return invalidClassificationError(raw)
}

func (e invalidClassificationError) Error() string {
	return "invalid classification response: " + string(e)
}

func validCategory(category string) bool {
	for _, c := range Categories() {
		if category == c {
			return true
		}
	}
	return false
}

func validSeverity(severity string) bool {
	switch severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}
