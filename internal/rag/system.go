// Package rag orchestrates analysis, retrieval and optional LLM narrative
// generation into guidance responses. Deterministic output never depends on
// the LLM: narrative failures are reported alongside the full deterministic
// result.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/alevsk/podsec-advisor/internal/analyzer"
	"github.com/alevsk/podsec-advisor/internal/catalog"
	"github.com/alevsk/podsec-advisor/internal/logger"
	"github.com/alevsk/podsec-advisor/internal/schema"
	"github.com/alevsk/podsec-advisor/internal/vectorstore"
	"github.com/alevsk/podsec-advisor/internal/version"
)

// System wires the analyzer, retrieval store, version registry, field
// catalog and optional LLM. All dependencies are injected; a nil LLM
// disables narrative generation.
type System struct {
	analyzer *analyzer.Analyzer
	store    *vectorstore.Store
	registry *version.Registry
	catalog  *catalog.Catalog
	llm      LLM
}

// New creates a guidance system from its dependencies
func New(a *analyzer.Analyzer, store *vectorstore.Store, registry *version.Registry, cat *catalog.Catalog, llm LLM) *System {
	return &System{
		analyzer: a,
		store:    store,
		registry: registry,
		catalog:  cat,
		llm:      llm,
	}
}

// AnalyzeResponse is the full guidance output for one manifest
type AnalyzeResponse struct {
	Analysis       schema.PodSecurityAnalysis `json:"analysis"`
	Advice         Advice                     `json:"advice"`
	VersionNote    string                     `json:"versionNote,omitempty"`
	References     []schema.SearchResult      `json:"references,omitempty"`
	Narrative      string                     `json:"narrative,omitempty"`
	FixedYAML      string                     `json:"fixedYaml,omitempty"`
	NarrativeError string                     `json:"narrativeError,omitempty"`
}

// AnalyzePod analyzes a manifest and augments the verdicts with retrieved
// guidance. Retrieval failures degrade to fewer references; LLM failures
// leave the narrative empty and set NarrativeError.
func (s *System) AnalyzePod(ctx context.Context, yamlText, k8sVersion string, targetLevel schema.PolicyLevel, useLLM bool) AnalyzeResponse {
	if targetLevel == "" {
		targetLevel = schema.PolicyLevelBaseline
	}

	analysis := s.analyzer.Analyze(yamlText, k8sVersion)
	resp := AnalyzeResponse{
		Analysis:    analysis,
		Advice:      buildAdvice(analysis, targetLevel),
		VersionNote: s.registry.Note(k8sVersion),
	}

	for _, r := range analysis.Results {
		if r.Status == schema.StatusSecure || r.Status == schema.StatusInfo {
			continue
		}
		results, err := s.store.Search(ctx, "security guidance for "+r.FieldName, vectorstore.SearchOptions{
			Version:  k8sVersion,
			NResults: 3,
			Filter:   map[string]any{"field_name": r.FieldName},
		})
		if err != nil {
			logger.Warn().Err(err).Str("field", r.FieldName).Msg("field guidance retrieval failed")
			continue
		}
		resp.References = append(resp.References, results...)
	}

	levelQuery := fmt.Sprintf("%s pod security standard requirements", strings.ToLower(string(targetLevel)))
	if results, err := s.store.Search(ctx, levelQuery, vectorstore.SearchOptions{
		Version:  k8sVersion,
		NResults: 3,
	}); err != nil {
		logger.Warn().Err(err).Msg("policy level retrieval failed")
	} else {
		resp.References = append(resp.References, results...)
	}

	if useLLM {
		s.addNarrative(ctx, &resp, targetLevel)
	}
	return resp
}

func (s *System) addNarrative(ctx context.Context, resp *AnalyzeResponse, targetLevel schema.PolicyLevel) {
	if s.llm == nil {
		resp.NarrativeError = "narrative requested but no LLM is configured"
		return
	}

	references := formatReferences(resp.References, 6)
	narrative, err := s.llm.Generate(ctx, analysisPrompt(resp.Analysis, references, string(targetLevel)))
	if err != nil {
		resp.NarrativeError = fmt.Sprintf("narrative generation failed: %v", err)
		logger.Warn().Err(err).Msg("narrative generation failed")
		return
	}
	resp.Narrative = narrative

	if len(resp.Analysis.CriticalIssues) == 0 && len(resp.Analysis.Warnings) == 0 {
		return
	}
	fixed, err := s.llm.Generate(ctx, fixedYAMLPrompt(resp.Analysis))
	if err != nil {
		resp.NarrativeError = fmt.Sprintf("fixed manifest generation failed: %v", err)
		logger.Warn().Err(err).Msg("fixed manifest generation failed")
		return
	}
	resp.FixedYAML = extractYAML(fixed)
}

// AnswerResponse is the output of a documentation question
type AnswerResponse struct {
	Question       string                `json:"question"`
	Answer         string                `json:"answer"`
	References     []schema.SearchResult `json:"references,omitempty"`
	Narrative      string                `json:"narrative,omitempty"`
	NarrativeError string                `json:"narrativeError,omitempty"`
}

// AnswerQuestion retrieves relevant chunks and answers a free-form
// question. The deterministic answer is always present; the LLM narrative
// is additive.
func (s *System) AnswerQuestion(ctx context.Context, question, k8sVersion string, policyLevel schema.PolicyLevel, useLLM bool) AnswerResponse {
	opts := vectorstore.SearchOptions{Version: k8sVersion, NResults: 5}
	if policyLevel != "" {
		opts.Filter = map[string]any{"policy_level": string(policyLevel)}
	}

	results, err := s.store.Search(ctx, question, opts)
	if err != nil {
		logger.Warn().Err(err).Msg("question retrieval failed")
	}

	resp := AnswerResponse{
		Question:   question,
		Answer:     contextualAnswer(question, k8sVersion, results),
		References: results,
	}

	if useLLM {
		if s.llm == nil {
			resp.NarrativeError = "narrative requested but no LLM is configured"
			return resp
		}
		narrative, err := s.llm.Generate(ctx, questionPrompt(question, formatReferences(results, 5), k8sVersion))
		if err != nil {
			resp.NarrativeError = fmt.Sprintf("narrative generation failed: %v", err)
			logger.Warn().Err(err).Msg("narrative generation failed")
		} else {
			resp.Narrative = narrative
		}
	}
	return resp
}

// UnknownFieldError reports a field-guidance request for a field outside
// the catalog, listing what is available
type UnknownFieldError struct {
	Field     string   `json:"field"`
	Available []string `json:"availableFields"`
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown security field %q; available fields: %s", e.Field, strings.Join(e.Available, ", "))
}

// FieldGuidanceResponse is the output of a field-guidance request
type FieldGuidanceResponse struct {
	FieldName      string                `json:"fieldName"`
	Spec           catalog.FieldSpec     `json:"spec"`
	Guidance       map[string][]string   `json:"guidance,omitempty"`
	References     []schema.SearchResult `json:"references,omitempty"`
	VersionNote    string                `json:"versionNote,omitempty"`
	Narrative      string                `json:"narrative,omitempty"`
	NarrativeError string                `json:"narrativeError,omitempty"`
}

// FieldGuidance returns catalog and retrieved guidance for one security
// field, organized by chunk type. Unknown fields return UnknownFieldError.
func (s *System) FieldGuidance(ctx context.Context, fieldName, k8sVersion string, useLLM bool) (FieldGuidanceResponse, error) {
	spec, ok := s.catalog.ByName(fieldName)
	if !ok {
		return FieldGuidanceResponse{}, &UnknownFieldError{Field: fieldName, Available: s.catalog.Names()}
	}

	resp := FieldGuidanceResponse{
		FieldName:   fieldName,
		Spec:        spec,
		VersionNote: s.registry.Note(k8sVersion),
	}

	results, err := s.store.GetByFieldName(ctx, fieldName, k8sVersion, 10)
	if err != nil {
		logger.Warn().Err(err).Str("field", fieldName).Msg("field guidance retrieval failed")
	} else {
		resp.References = results
		resp.Guidance = make(map[string][]string)
		for _, r := range results {
			chunkType, _ := r.Metadata["chunk_type"].(string)
			if chunkType == "" {
				chunkType = "general"
			}
			resp.Guidance[chunkType] = append(resp.Guidance[chunkType], r.Content)
		}
	}

	if useLLM {
		if s.llm == nil {
			resp.NarrativeError = "narrative requested but no LLM is configured"
			return resp, nil
		}
		narrative, err := s.llm.Generate(ctx, fieldGuidancePrompt(fieldName, formatReferences(results, 5), k8sVersion))
		if err != nil {
			resp.NarrativeError = fmt.Sprintf("narrative generation failed: %v", err)
			logger.Warn().Err(err).Str("field", fieldName).Msg("narrative generation failed")
		} else {
			resp.Narrative = narrative
		}
	}
	return resp, nil
}

// extractYAML strips a Markdown code fence if the LLM wrapped its output
func extractYAML(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```yaml")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
