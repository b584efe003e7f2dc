// Package ingestor resolves a manifest source argument into Pod YAML.
// Sources can be local files, HTTP(S) URLs or "-" for standard input.
package ingestor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceType identifies where a manifest came from
type SourceType int

const (
	SourceTypeFile SourceType = iota
	SourceTypeRemote
	SourceTypeStdin
)

// String returns the string representation of a SourceType
func (st SourceType) String() string {
	switch st {
	case SourceTypeFile:
		return "file"
	case SourceTypeRemote:
		return "remote"
	case SourceTypeStdin:
		return "stdin"
	default:
		return "unknown"
	}
}

// ResolverMetadata describes a resolved source
type ResolverMetadata struct {
	Type    SourceType
	Path    string
	Size    int64
	ModTime int64
}

// Options configures source resolution
type Options struct {
	// ValidateYAML rejects sources that do not parse as YAML
	ValidateYAML bool
}

// SourceResolver defines the interface that all source resolvers implement
type SourceResolver interface {
	// CanResolve checks if this resolver can handle the given source
	CanResolve(source string) bool

	// Resolve processes the source and returns a reader for its contents
	Resolve(ctx context.Context) (io.ReadCloser, *ResolverMetadata, error)
}

// ResolverFactory creates the appropriate resolver for a given source
func ResolverFactory(source string, opts *Options) (SourceResolver, error) {
	if source == "" {
		return nil, fmt.Errorf("empty source")
	}

	if source == "-" {
		return NewStdinResolver(opts), nil
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return NewRemoteYAMLResolver(source, opts, nil)
	}

	resolver := NewLocalYAMLResolver(source, opts)
	if resolver.CanResolve(source) {
		return resolver, nil
	}

	return nil, fmt.Errorf("no suitable resolver found for source: %s", source)
}

// ReadManifest resolves a source and returns its full contents
func ReadManifest(ctx context.Context, source string, opts *Options) (string, *ResolverMetadata, error) {
	resolver, err := ResolverFactory(source, opts)
	if err != nil {
		return "", nil, err
	}

	reader, metadata, err := resolver.Resolve(ctx)
	if err != nil {
		return "", nil, err
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read source %s: %w", source, err)
	}
	return string(content), metadata, nil
}

// validateYAML checks that content parses as a YAML document
func validateYAML(content []byte) error {
	var doc any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	return nil
}
