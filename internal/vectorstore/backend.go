// Package vectorstore provides versioned similarity search over security
// knowledge chunks. The versioned store fans queries out across a common
// collection, per-version collections and a general documentation
// collection; backends supply the raw storage and nearest-neighbor search.
package vectorstore

import (
	"context"
	"errors"
)

// ErrNoCollection is returned by backends when a query names a collection
// that has not been created
var ErrNoCollection = errors.New("collection does not exist")

// Document is a stored chunk with its embedding
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]any
	Embedding []float32
}

// Match is one nearest-neighbor hit from a backend query. Distance is the
// backend's raw cosine distance; lower is closer.
type Match struct {
	ID       string
	Content  string
	Metadata map[string]any
	Distance float64
}

// Backend is the minimal storage contract the versioned store needs.
// Implementations must be safe for concurrent use.
type Backend interface {
	// EnsureCollection creates the named collection if it does not exist
	EnsureCollection(ctx context.Context, name string) error

	// Insert upserts documents into an existing collection
	Insert(ctx context.Context, collection string, docs []Document) error

	// Query returns up to limit matches ordered by ascending distance.
	// A non-nil filter restricts matches to documents whose metadata
	// contains every filter entry. Returns ErrNoCollection for unknown
	// collections.
	Query(ctx context.Context, collection string, embedding []float32, limit int, filter map[string]any) ([]Match, error)

	// Count returns the number of documents in a collection
	Count(ctx context.Context, collection string) (int, error)

	// Collections lists existing collection names in sorted order
	Collections(ctx context.Context) ([]string, error)

	// DeleteCollection removes a collection and all its documents
	DeleteCollection(ctx context.Context, name string) error
}
