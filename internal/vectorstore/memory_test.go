package vectorstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryUnknownCollection(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Query(ctx, "missing", []float32{1}, 5, nil); !errors.Is(err, ErrNoCollection) {
		t.Errorf("Query on missing collection error = %v, want ErrNoCollection", err)
	}
	if err := m.Insert(ctx, "missing", []Document{{ID: "a"}}); !errors.Is(err, ErrNoCollection) {
		t.Errorf("Insert on missing collection error = %v, want ErrNoCollection", err)
	}
	if _, err := m.Count(ctx, "missing"); !errors.Is(err, ErrNoCollection) {
		t.Errorf("Count on missing collection error = %v, want ErrNoCollection", err)
	}
}

func TestMemoryQueryOrderingAndFilter(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.EnsureCollection(ctx, "c"); err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}
	docs := []Document{
		{ID: "exact", Content: "exact", Metadata: map[string]any{"kind": "a"}, Embedding: []float32{1, 0}},
		{ID: "close", Content: "close", Metadata: map[string]any{"kind": "a"}, Embedding: []float32{0.9, 0.1}},
		{ID: "far", Content: "far", Metadata: map[string]any{"kind": "b"}, Embedding: []float32{0, 1}},
	}
	if err := m.Insert(ctx, "c", docs); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	matches, err := m.Query(ctx, "c", []float32{1, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("Query returned %d matches, want 3", len(matches))
	}
	if matches[0].ID != "exact" || matches[1].ID != "close" || matches[2].ID != "far" {
		t.Errorf("order = %s, %s, %s; want exact, close, far", matches[0].ID, matches[1].ID, matches[2].ID)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Distance < matches[i-1].Distance {
			t.Errorf("distances not ascending: %v then %v", matches[i-1].Distance, matches[i].Distance)
		}
	}

	filtered, err := m.Query(ctx, "c", []float32{1, 0}, 10, map[string]any{"kind": "b"})
	if err != nil {
		t.Fatalf("Query with filter: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != "far" {
		t.Errorf("filtered matches = %v, want only far", filtered)
	}

	limited, err := m.Query(ctx, "c", []float32{1, 0}, 1, nil)
	if err != nil {
		t.Fatalf("Query with limit: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited matches = %d, want 1", len(limited))
	}
}

func TestMemoryUpsertAndDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.EnsureCollection(ctx, "c"); err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}
	doc := Document{ID: "a", Content: "first", Embedding: []float32{1}}
	if err := m.Insert(ctx, "c", []Document{doc}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	doc.Content = "second"
	if err := m.Insert(ctx, "c", []Document{doc}); err != nil {
		t.Fatalf("Insert update: %v", err)
	}

	count, err := m.Count(ctx, "c")
	if err != nil || count != 1 {
		t.Errorf("Count = %d, %v; want 1, nil", count, err)
	}

	matches, _ := m.Query(ctx, "c", []float32{1}, 1, nil)
	if len(matches) != 1 || matches[0].Content != "second" {
		t.Errorf("upsert did not replace content: %v", matches)
	}

	if err := m.DeleteCollection(ctx, "c"); err != nil {
		t.Fatalf("DeleteCollection: %v", err)
	}
	names, _ := m.Collections(ctx)
	if len(names) != 0 {
		t.Errorf("Collections after delete = %v, want none", names)
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 1},
		{"length mismatch", []float32{1}, []float32{1, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineDistance(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineDistance = %v, want %v", got, tt.want)
			}
		})
	}
}
