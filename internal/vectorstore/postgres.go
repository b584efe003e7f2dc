package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/alevsk/podsec-advisor/internal/logger"
)

// Postgres is a Backend backed by PostgreSQL with the pgvector extension.
// All collections share one table, discriminated by a collection column.
type Postgres struct {
	pool *pgxpool.Pool
	dim  int
}

// NewPostgres connects to the database, verifies connectivity and creates
// the schema if needed. dim is the embedding dimension of the vector column.
func NewPostgres(ctx context.Context, dsn string, dim int) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := &Postgres{pool: pool, dim: dim}
	if err := p.setup(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) setup(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT NOT NULL,
			collection TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			PRIMARY KEY (id, collection)
		)`, p.dim),
		`CREATE INDEX IF NOT EXISTS chunks_collection_idx ON chunks (collection)`,
		`CREATE INDEX IF NOT EXISTS chunks_metadata_idx ON chunks USING GIN (metadata jsonb_path_ops)`,
	}

	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool
func (p *Postgres) Close() {
	p.pool.Close()
}

// EnsureCollection registers a collection name, ignoring duplicates
func (p *Postgres) EnsureCollection(ctx context.Context, name string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO collections (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return fmt.Errorf("ensure collection %q: %w", name, err)
	}
	return nil
}

// Insert upserts documents into a collection
func (p *Postgres) Insert(ctx context.Context, collection string, docs []Document) error {
	for _, doc := range docs {
		metadata, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %q: %w", doc.ID, err)
		}
		embedding := pgvector.NewVector(doc.Embedding)

		_, err = p.pool.Exec(ctx,
			`INSERT INTO chunks (id, collection, content, embedding, metadata)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id, collection) DO UPDATE
			 SET content = EXCLUDED.content,
			     embedding = EXCLUDED.embedding,
			     metadata = EXCLUDED.metadata`,
			doc.ID, collection, doc.Content, embedding, metadata)
		if err != nil {
			return fmt.Errorf("insert chunk %q into %q: %w", doc.ID, collection, err)
		}
	}

	logger.Debug().Str("collection", collection).Int("count", len(docs)).Msg("inserted chunks")
	return nil
}

// Query returns the nearest chunks in a collection by cosine distance
func (p *Postgres) Query(ctx context.Context, collection string, embedding []float32, limit int, filter map[string]any) ([]Match, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM collections WHERE name = $1)`, collection).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check collection %q: %w", collection, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNoCollection, collection)
	}

	if filter == nil {
		filter = map[string]any{}
	}
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("marshal filter: %w", err)
	}
	queryVec := pgvector.NewVector(embedding)

	rows, err := p.pool.Query(ctx,
		`SELECT id, content, metadata, embedding <=> $2 AS distance
		 FROM chunks
		 WHERE collection = $1 AND metadata @> $3
		 ORDER BY embedding <=> $2
		 LIMIT $4`,
		collection, queryVec, filterJSON, limit)
	if err != nil {
		return nil, fmt.Errorf("query collection %q: %w", collection, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var metadata []byte
		if err := rows.Scan(&m.ID, &m.Content, &metadata, &m.Distance); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if err := json.Unmarshal(metadata, &m.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata for %q: %w", m.ID, err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

// Count returns the number of chunks in a collection
func (p *Postgres) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx,
		`SELECT count(*) FROM chunks WHERE collection = $1`, collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count collection %q: %w", collection, err)
	}
	return count, nil
}

// Collections lists registered collection names in sorted order
func (p *Postgres) Collections(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT name FROM collections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan collection name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteCollection removes a collection and its chunks
func (p *Postgres) DeleteCollection(ctx context.Context, name string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM collections WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete collection %q: %w", name, err)
	}
	return nil
}
