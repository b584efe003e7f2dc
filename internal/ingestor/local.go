package ingestor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalYAMLResolver implements SourceResolver for local YAML files
type LocalYAMLResolver struct {
	source string
	opts   *Options
}

// NewLocalYAMLResolver creates a new LocalYAMLResolver
func NewLocalYAMLResolver(source string, opts *Options) *LocalYAMLResolver {
	return &LocalYAMLResolver{source: source, opts: opts}
}

// CanResolve checks if the source is an existing YAML file
func (r *LocalYAMLResolver) CanResolve(source string) bool {
	ext := strings.ToLower(filepath.Ext(source))
	if ext != ".yaml" && ext != ".yml" {
		return false
	}
	info, err := os.Stat(source)
	return err == nil && !info.IsDir()
}

// Resolve opens the file and returns its reader and metadata
func (r *LocalYAMLResolver) Resolve(_ context.Context) (io.ReadCloser, *ResolverMetadata, error) {
	info, err := os.Stat(r.source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("source is a directory: %s", r.source)
	}

	content, err := os.ReadFile(r.source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	if r.opts != nil && r.opts.ValidateYAML {
		if err := validateYAML(content); err != nil {
			return nil, nil, err
		}
	}

	metadata := &ResolverMetadata{
		Type:    SourceTypeFile,
		Path:    r.source,
		Size:    info.Size(),
		ModTime: info.ModTime().Unix(),
	}
	return io.NopCloser(strings.NewReader(string(content))), metadata, nil
}
