package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alevsk/podsec-advisor/internal/analyzer"
	"github.com/alevsk/podsec-advisor/internal/catalog"
	"github.com/alevsk/podsec-advisor/internal/config"
	"github.com/alevsk/podsec-advisor/internal/logger"
	"github.com/alevsk/podsec-advisor/internal/rag"
	"github.com/alevsk/podsec-advisor/internal/schema"
	"github.com/alevsk/podsec-advisor/internal/vectorstore"
	"github.com/alevsk/podsec-advisor/internal/version"
)

// Embedding dimensions per embedder
const (
	openAIEmbeddingDim = 1536
	hashEmbeddingDim   = 256
)

// buildStore wires the retrieval store. Without an API key embeddings fall
// back to the offline hash embedder; without a reachable database the store
// runs in memory.
func buildStore(ctx context.Context, cfg *config.Config, registry *version.Registry, cat *catalog.Catalog) (*vectorstore.Store, func()) {
	var embedder vectorstore.Embedder
	dim := hashEmbeddingDim
	if cfg.OpenAI.APIKey != "" {
		embedder = vectorstore.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
		dim = openAIEmbeddingDim
	} else {
		embedder = vectorstore.NewHashEmbedder(hashEmbeddingDim)
		logger.Warn().Msg("no OpenAI API key configured, using offline hash embeddings")
	}

	backend, err := vectorstore.NewPostgres(ctx, cfg.DSN(), dim)
	if err != nil {
		logger.Warn().Err(err).Msg("database unavailable, using in-memory store")
		return vectorstore.NewStore(vectorstore.NewMemory(), embedder, registry, cat), func() {}
	}
	return vectorstore.NewStore(backend, embedder, registry, cat), backend.Close
}

// buildLLM returns the narrative backend, or nil when no API key is set
func buildLLM(cfg *config.Config) rag.LLM {
	if cfg.OpenAI.APIKey == "" {
		return nil
	}
	return rag.NewOpenAILLM(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Timeout)
}

// buildSystem wires the full guidance system
func buildSystem(ctx context.Context, cfg *config.Config) (*rag.System, *vectorstore.Store, *version.Registry, func()) {
	registry := version.NewRegistry()
	cat := catalog.New()
	store, cleanup := buildStore(ctx, cfg, registry, cat)
	system := rag.New(analyzer.New(cat, registry), store, registry, cat, buildLLM(cfg))
	return system, store, registry, cleanup
}

// parsePolicyLevel maps a flag value to a policy level
func parsePolicyLevel(s string) (schema.PolicyLevel, error) {
	switch strings.ToLower(s) {
	case "", "baseline":
		return schema.PolicyLevelBaseline, nil
	case "restricted":
		return schema.PolicyLevelRestricted, nil
	case "privileged":
		return schema.PolicyLevelPrivileged, nil
	default:
		return "", fmt.Errorf("unknown policy level: %s (expected baseline, restricted or privileged)", s)
	}
}
