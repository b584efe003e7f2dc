package ingestor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Default timeout for HTTP requests
const defaultHTTPTimeout = 30 * time.Second

// RemoteYAMLResolver implements SourceResolver for remote HTTP/HTTPS resources
type RemoteYAMLResolver struct {
	source string
	opts   *Options
	client *http.Client
}

// isValidURL checks if a string is a valid URL
func isValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// NewRemoteYAMLResolver creates a new RemoteYAMLResolver. A nil client gets
// a default with timeout and redirect limits.
func NewRemoteYAMLResolver(source string, opts *Options, client *http.Client) (*RemoteYAMLResolver, error) {
	if !isValidURL(source) {
		return nil, fmt.Errorf("invalid URL: %s", source)
	}

	if client == nil {
		client = &http.Client{
			Timeout: defaultHTTPTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}

	return &RemoteYAMLResolver{source: source, opts: opts, client: client}, nil
}

// CanResolve checks if this resolver can handle the given source
func (r *RemoteYAMLResolver) CanResolve(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Resolve fetches the URL and returns a reader for its contents
func (r *RemoteYAMLResolver) Resolve(ctx context.Context) (io.ReadCloser, *ResolverMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.source, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/yaml,text/yaml,text/plain")
	req.Header.Set("User-Agent", "podsec-advisor/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("HTTP request failed with status: %s", resp.Status)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if r.opts != nil && r.opts.ValidateYAML {
		if err := validateYAML(content); err != nil {
			return nil, nil, err
		}
	}

	metadata := &ResolverMetadata{
		Type:    SourceTypeRemote,
		Path:    r.source,
		Size:    int64(len(content)),
		ModTime: time.Now().Unix(),
	}
	return io.NopCloser(strings.NewReader(string(content))), metadata, nil
}
