package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/alevsk/podsec-advisor/internal/catalog"
	"github.com/alevsk/podsec-advisor/internal/logger"
	"github.com/alevsk/podsec-advisor/internal/schema"
	"github.com/alevsk/podsec-advisor/internal/version"
)

// Collection names. Version-specific collections are derived from
// VersionCollection.
const (
	CommonCollection = "kubernetes_security_common"
	DocsCollection   = "kubernetes_docs"

	defaultNResults = 5
)

// VersionCollection returns the collection name for a Kubernetes version,
// e.g. "kubernetes_security_v1_24" for "1.24"
func VersionCollection(v string) string {
	return "kubernetes_security_v" + strings.ReplaceAll(v, ".", "_")
}

// SearchOptions controls a versioned search. The common and documentation
// collections are included by default; the Exclude flags are inverted so the
// zero value keeps that default.
type SearchOptions struct {
	// Version adds the matching per-version collection to the fan-out
	Version string
	// NResults is the per-collection result limit; defaults to 5
	NResults int
	// Filter restricts matches to chunks whose metadata contains every entry
	Filter map[string]any
	// ExcludeCommon drops the common collection from the fan-out
	ExcludeCommon bool
	// ExcludeDocs drops the documentation collection from the fan-out
	ExcludeDocs bool
}

// Statistics summarizes stored chunk counts per collection
type Statistics struct {
	Collections map[string]int `json:"collections"`
	TotalChunks int            `json:"totalChunks"`
}

// Store is the versioned retrieval store. It partitions chunks into a
// common collection, one collection per Kubernetes version and a general
// documentation collection, and merges search results across them.
type Store struct {
	backend  Backend
	embedder Embedder
	registry *version.Registry
	catalog  *catalog.Catalog

	// mu guards lazy collection creation so concurrent ingests of the
	// same version race safely
	mu    sync.Mutex
	ready map[string]bool
}

// NewStore creates a versioned store over a backend and embedder
func NewStore(backend Backend, embedder Embedder, registry *version.Registry, cat *catalog.Catalog) *Store {
	return &Store{
		backend:  backend,
		embedder: embedder,
		registry: registry,
		catalog:  cat,
		ready:    make(map[string]bool),
	}
}

func (s *Store) ensure(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready[collection] {
		return nil
	}
	if err := s.backend.EnsureCollection(ctx, collection); err != nil {
		return err
	}
	s.ready[collection] = true
	return nil
}

// InitializeVersion creates the collection for a supported version and
// seeds it with the catalog's per-field chunks for that version
func (s *Store) InitializeVersion(ctx context.Context, v string) error {
	if !s.registry.IsSupported(v) {
		return fmt.Errorf("unsupported kubernetes version: %s", v)
	}

	var chunks []schema.SecurityChunk
	for _, f := range s.catalog.All() {
		chunks = append(chunks, FieldChunks(f, v)...)
	}
	return s.add(ctx, VersionCollection(v), chunks)
}

// InitializeCommon seeds the common collection with version-independent
// catalog chunks
func (s *Store) InitializeCommon(ctx context.Context) error {
	var chunks []schema.SecurityChunk
	for _, f := range s.catalog.All() {
		chunks = append(chunks, FieldChunks(f, "")...)
	}
	return s.add(ctx, CommonCollection, chunks)
}

// AddCommonChunks stores version-independent security chunks
func (s *Store) AddCommonChunks(ctx context.Context, chunks []schema.SecurityChunk) error {
	return s.add(ctx, CommonCollection, chunks)
}

// AddVersionChunks stores chunks for one supported Kubernetes version
func (s *Store) AddVersionChunks(ctx context.Context, v string, chunks []schema.SecurityChunk) error {
	if !s.registry.IsSupported(v) {
		return fmt.Errorf("unsupported kubernetes version: %s", v)
	}
	return s.add(ctx, VersionCollection(v), chunks)
}

// AddDocChunks stores general documentation chunks
func (s *Store) AddDocChunks(ctx context.Context, chunks []schema.SecurityChunk) error {
	return s.add(ctx, DocsCollection, chunks)
}

// AddDocPages chunks crawled documentation pages and stores them in the
// documentation collection
func (s *Store) AddDocPages(ctx context.Context, pages []schema.ParsedPage) error {
	var chunks []schema.SecurityChunk
	for _, page := range pages {
		chunks = append(chunks, PageChunks(page)...)
	}
	return s.AddDocChunks(ctx, chunks)
}

func (s *Store) add(ctx context.Context, collection string, chunks []schema.SecurityChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := s.ensure(ctx, collection); err != nil {
		return err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d chunks for %q: %w", len(chunks), collection, err)
	}

	docs := make([]Document, len(chunks))
	for i, c := range chunks {
		docs[i] = Document{
			ID:        c.ID,
			Content:   c.Content,
			Metadata:  c.Metadata.Map(),
			Embedding: embeddings[i],
		}
	}
	if err := s.backend.Insert(ctx, collection, docs); err != nil {
		return err
	}

	logger.Info().Str("collection", collection).Int("chunks", len(chunks)).Msg("stored chunks")
	return nil
}

// Search fans a query out across the common collection, the collection for
// opts.Version (when set) and the documentation collection, then merges the
// partitions by ascending distance. The Exclude flags narrow the fan-out,
// down to a single per-version partition. A failing partition contributes no
// results instead of failing the search, so a missing version collection
// degrades to common knowledge. The merged list is truncated to twice the
// per-collection limit.
func (s *Store) Search(ctx context.Context, query string, opts SearchOptions) ([]schema.SearchResult, error) {
	nResults := opts.NResults
	if nResults <= 0 {
		nResults = defaultNResults
	}

	embeddings, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	embedding := embeddings[0]

	var collections []string
	if !opts.ExcludeCommon {
		collections = append(collections, CommonCollection)
	}
	if opts.Version != "" {
		collections = append(collections, VersionCollection(opts.Version))
	}
	if !opts.ExcludeDocs {
		collections = append(collections, DocsCollection)
	}

	var merged []schema.SearchResult
	for _, collection := range collections {
		matches, err := s.backend.Query(ctx, collection, embedding, nResults, opts.Filter)
		if err != nil {
			logger.Warn().Err(err).Str("collection", collection).Msg("skipping collection in search")
			continue
		}
		for _, m := range matches {
			merged = append(merged, schema.SearchResult{
				ID:         m.ID,
				Content:    m.Content,
				Metadata:   m.Metadata,
				Distance:   m.Distance,
				Collection: collection,
			})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Distance < merged[j].Distance
	})
	if len(merged) > nResults*2 {
		merged = merged[:nResults*2]
	}
	return merged, nil
}

// GetByFieldName returns the chunks describing one security field across
// the collections a version can see
func (s *Store) GetByFieldName(ctx context.Context, fieldName, v string, nResults int) ([]schema.SearchResult, error) {
	if nResults <= 0 {
		nResults = 10
	}
	return s.Search(ctx, fieldName, SearchOptions{
		Version:  v,
		NResults: nResults,
		Filter:   map[string]any{"field_name": fieldName},
	})
}

// Statistics reports chunk counts for every existing collection
func (s *Store) Statistics(ctx context.Context) (Statistics, error) {
	names, err := s.backend.Collections(ctx)
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{Collections: make(map[string]int, len(names))}
	for _, name := range names {
		count, err := s.backend.Count(ctx, name)
		if err != nil {
			return Statistics{}, err
		}
		stats.Collections[name] = count
		stats.TotalChunks += count
	}
	return stats, nil
}

// Reset deletes every collection and recreates the common and docs
// collections empty. Per-collection delete failures are logged and skipped
// so a partial reset still leaves the store usable.
func (s *Store) Reset(ctx context.Context) error {
	names, err := s.backend.Collections(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := s.backend.DeleteCollection(ctx, name); err != nil {
			logger.Warn().Err(err).Str("collection", name).Msg("failed to delete collection during reset")
		}
	}

	s.mu.Lock()
	s.ready = make(map[string]bool)
	s.mu.Unlock()

	for _, name := range []string{CommonCollection, DocsCollection} {
		if err := s.ensure(ctx, name); err != nil {
			return err
		}
	}

	logger.Info().Int("collections", len(names)).Msg("store reset")
	return nil
}
