package ingestor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// StdinResolver implements SourceResolver for manifests piped on stdin
type StdinResolver struct {
	opts  *Options
	input io.Reader
}

// NewStdinResolver creates a resolver reading from standard input
func NewStdinResolver(opts *Options) *StdinResolver {
	return &StdinResolver{opts: opts, input: os.Stdin}
}

// CanResolve checks if this resolver can handle the given source
func (r *StdinResolver) CanResolve(source string) bool {
	return source == "-"
}

// Resolve reads all of standard input
func (r *StdinResolver) Resolve(_ context.Context) (io.ReadCloser, *ResolverMetadata, error) {
	content, err := io.ReadAll(r.input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(content) == 0 {
		return nil, nil, fmt.Errorf("empty input on stdin")
	}
	if r.opts != nil && r.opts.ValidateYAML {
		if err := validateYAML(content); err != nil {
			return nil, nil, err
		}
	}

	metadata := &ResolverMetadata{
		Type:    SourceTypeStdin,
		Path:    "-",
		Size:    int64(len(content)),
		ModTime: time.Now().Unix(),
	}
	return io.NopCloser(strings.NewReader(string(content))), metadata, nil
}
