package vectorstore

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/alevsk/podsec-advisor/internal/catalog"
	"github.com/alevsk/podsec-advisor/internal/schema"
)

// Chunking limits for documentation pages
const (
	maxPageChunk    = 2000
	maxSectionChunk = 1500
	minSectionChunk = 50
)

// FieldChunks builds the retrieval chunks for one catalog field. IDs are
// deterministic so re-ingesting a version upserts instead of duplicating.
// The version is empty for common (version-independent) chunks.
func FieldChunks(f catalog.FieldSpec, version string) []schema.SecurityChunk {
	base := schema.ChunkMetadata{
		FieldName:      f.FieldName,
		PolicyLevel:    string(f.PolicyLevel),
		Version:        version,
		SourceDocument: f.SourceDocument,
	}

	id := func(chunkType string) string {
		if version == "" {
			return fmt.Sprintf("%s_%s", f.FieldName, chunkType)
		}
		return fmt.Sprintf("%s_%s_v%s", f.FieldName, chunkType, strings.ReplaceAll(version, ".", "_"))
	}
	meta := func(chunkType string) schema.ChunkMetadata {
		m := base
		m.ChunkType = chunkType
		return m
	}

	var chunks []schema.SecurityChunk

	description := fmt.Sprintf("Field: %s (%s)\nDescription: %s\nSecurity impact: %s",
		f.FieldName, f.FieldPath, f.Description, f.SecurityImpact)
	if len(f.AcceptableValues) > 0 {
		description += "\nAcceptable values: " + strings.Join(f.AcceptableValues, ", ")
	}
	chunks = append(chunks, schema.SecurityChunk{
		ID:       id(schema.ChunkTypeDescription),
		Content:  description,
		Metadata: meta(schema.ChunkTypeDescription),
	})

	if f.YAMLExample != "" {
		chunks = append(chunks, schema.SecurityChunk{
			ID:       id(schema.ChunkTypeExample),
			Content:  fmt.Sprintf("Secure configuration example for %s:\n%s", f.FieldName, f.YAMLExample),
			Metadata: meta(schema.ChunkTypeExample),
		})
	}

	if len(f.CommonPitfalls) > 0 {
		chunks = append(chunks, schema.SecurityChunk{
			ID:       id(schema.ChunkTypePitfalls),
			Content:  fmt.Sprintf("Common pitfalls for %s:\n- %s", f.FieldName, strings.Join(f.CommonPitfalls, "\n- ")),
			Metadata: meta(schema.ChunkTypePitfalls),
		})
	}

	if len(f.RemediationSteps) > 0 {
		chunks = append(chunks, schema.SecurityChunk{
			ID:       id(schema.ChunkTypeRemediation),
			Content:  fmt.Sprintf("Remediation steps for %s:\n- %s", f.FieldName, strings.Join(f.RemediationSteps, "\n- ")),
			Metadata: meta(schema.ChunkTypeRemediation),
		})
	}

	return chunks
}

// PageChunks splits a crawled documentation page into retrieval chunks: one
// chunk for the page body and one per substantial section. Section content
// beyond the size limits is truncated, not split.
func PageChunks(page schema.ParsedPage) []schema.SecurityChunk {
	var chunks []schema.SecurityChunk

	meta := schema.ChunkMetadata{
		Version:        page.Version,
		SourceDocument: page.URL,
		Extra:          map[string]string{"title": page.Title},
	}

	if content := strings.TrimSpace(page.Content); content != "" {
		main := meta
		main.ChunkType = schema.ChunkTypeDescription
		chunks = append(chunks, schema.SecurityChunk{
			ID:       uuid.NewString(),
			Content:  truncate(content, maxPageChunk),
			Metadata: main,
		})
	}

	for _, section := range page.Sections {
		content := strings.TrimSpace(section.Content)
		if len(content) <= minSectionChunk {
			continue
		}
		m := meta
		m.ChunkType = schema.ChunkTypeSection
		m.Extra = map[string]string{"title": page.Title, "section": section.Title}
		chunks = append(chunks, schema.SecurityChunk{
			ID:       uuid.NewString(),
			Content:  fmt.Sprintf("%s\n%s", section.Title, truncate(content, maxSectionChunk)),
			Metadata: m,
		})
	}

	return chunks
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
