// Package crawler fetches and parses Kubernetes documentation pages for the
// retrieval store. Versions still on the legacy policy model are served from
// static content so no network access is needed for them.
package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/alevsk/podsec-advisor/internal/config"
	"github.com/alevsk/podsec-advisor/internal/logger"
	"github.com/alevsk/podsec-advisor/internal/schema"
	"github.com/alevsk/podsec-advisor/internal/version"
)

const crawlerUserAgent = "podsec-advisor-crawler/1.0"

// securityTopics are the registry URL topics crawled per version, in a
// fixed order so crawl output is reproducible
var securityTopics = []string{
	"pod_security_standards",
	"security_context",
	"rbac",
	"network_policies",
	"secrets",
	"service_accounts",
}

// linkKeywords select which discovered documentation links are worth
// crawling
var linkKeywords = []string{
	"security", "pod-security", "rbac", "network-polic",
	"secret", "admission", "securitycontext",
}

// Stats counts crawl outcomes
type Stats struct {
	PagesCrawled int `json:"pagesCrawled"`
	PagesFailed  int `json:"pagesFailed"`
	PagesSkipped int `json:"pagesSkipped"`
}

// Crawler fetches documentation pages with retry and politeness delays
type Crawler struct {
	client     *http.Client
	limiter    *rate.Limiter
	parser     *Parser
	registry   *version.Registry
	baseURL    string
	delay      time.Duration
	maxRetries int

	mu      sync.Mutex
	visited map[string]bool
	stats   Stats
}

// New creates a crawler from the application configuration
func New(cfg *config.Config, registry *version.Registry) *Crawler {
	return &Crawler{
		client:     &http.Client{Timeout: cfg.Crawler.Timeout},
		limiter:    rate.NewLimiter(rate.Every(cfg.Crawler.Delay), 1),
		parser:     NewParser(),
		registry:   registry,
		baseURL:    strings.TrimRight(cfg.Crawler.BaseURL, "/"),
		delay:      cfg.Crawler.Delay,
		maxRetries: cfg.Crawler.MaxRetries,
		visited:    make(map[string]bool),
	}
}

// CrawlVersion fetches up to maxPages security documentation pages for one
// Kubernetes version. Versions before 1.22 are served from static content.
// Individual page failures are counted and skipped; the version's crawl
// continues.
func (c *Crawler) CrawlVersion(ctx context.Context, v string, maxPages int) ([]schema.ParsedPage, error) {
	if !c.registry.IsSupported(v) {
		return nil, fmt.Errorf("unsupported kubernetes version: %s", v)
	}
	if version.Compare(v, "1.22") < 0 {
		logger.Info().Str("version", v).Msg("serving static content for legacy version")
		return StaticContent(v), nil
	}

	urls := c.seedURLs(v)
	if discovered, err := c.discoverLinks(ctx, v); err != nil {
		logger.Warn().Err(err).Str("version", v).Msg("link discovery failed")
	} else {
		urls = append(urls, discovered...)
	}

	var pages []schema.ParsedPage
	for _, pageURL := range urls {
		if maxPages > 0 && len(pages) >= maxPages {
			break
		}
		if c.markVisited(pageURL) {
			c.countSkipped()
			continue
		}

		page, err := c.fetchPage(ctx, pageURL, v)
		if err != nil {
			if ctx.Err() != nil {
				return pages, ctx.Err()
			}
			logger.Warn().Err(err).Str("url", pageURL).Msg("failed to crawl page")
			c.countFailed()
			continue
		}
		pages = append(pages, page)
		c.countCrawled()
	}

	logger.Info().Str("version", v).Int("pages", len(pages)).Msg("crawl complete")
	return pages, nil
}

// CrawlVersions crawls several versions, isolating failures per version
func (c *Crawler) CrawlVersions(ctx context.Context, versions []string, maxPages int) map[string][]schema.ParsedPage {
	out := make(map[string][]schema.ParsedPage, len(versions))
	for _, v := range versions {
		pages, err := c.CrawlVersion(ctx, v, maxPages)
		if err != nil {
			logger.Error().Err(err).Str("version", v).Msg("version crawl failed")
			continue
		}
		out[v] = pages
	}
	return out
}

// Statistics returns a snapshot of crawl counters
func (c *Crawler) Statistics() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Crawler) seedURLs(v string) []string {
	topicURLs := c.registry.URLs(v)
	var urls []string
	for _, topic := range securityTopics {
		if u, ok := topicURLs[topic]; ok {
			urls = append(urls, u)
		}
	}
	return urls
}

// discoverLinks fetches the security docs index and collects links whose
// paths mention a security keyword
func (c *Crawler) discoverLinks(ctx context.Context, v string) ([]string, error) {
	p, ok := c.registry.Get(v)
	if !ok {
		return nil, fmt.Errorf("unsupported kubernetes version: %s", v)
	}

	body, _, err := c.fetch(ctx, p.SecurityDocsURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		link := c.absolutize(href)
		if link == "" || seen[link] || !matchesKeyword(link) {
			return
		}
		seen[link] = true
		links = append(links, link)
	})
	return links, nil
}

func (c *Crawler) fetchPage(ctx context.Context, pageURL, v string) (schema.ParsedPage, error) {
	body, contentType, err := c.fetch(ctx, pageURL)
	if err != nil {
		return schema.ParsedPage{}, err
	}

	if strings.Contains(contentType, "markdown") || strings.HasSuffix(pageURL, ".md") {
		return c.parser.ParseMarkdown(body, pageURL, v)
	}
	return c.parser.ParseHTML(body, pageURL, v)
}

// fetch performs a rate-limited GET with linear-backoff retries
func (c *Crawler) fetch(ctx context.Context, pageURL string) ([]byte, string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, "", err
		}

		body, contentType, err := c.doRequest(ctx, pageURL)
		if err == nil {
			return body, contentType, nil
		}
		lastErr = err

		if attempt < c.maxRetries {
			logger.Debug().Err(err).Str("url", pageURL).Int("attempt", attempt).Msg("retrying fetch")
			select {
			case <-time.After(c.delay * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, "", ctx.Err()
			}
		}
	}
	return nil, "", fmt.Errorf("fetch %s after %d attempts: %w", pageURL, c.maxRetries, lastErr)
}

func (c *Crawler) doRequest(ctx context.Context, pageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", crawlerUserAgent)
	req.Header.Set("Accept", "text/html,text/markdown;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (c *Crawler) absolutize(href string) string {
	u, err := url.Parse(href)
	if err != nil || u.Fragment != "" && u.Path == "" {
		return ""
	}
	if u.IsAbs() {
		if !strings.HasPrefix(u.String(), c.baseURL) {
			return ""
		}
		u.Fragment = ""
		return u.String()
	}
	if !strings.HasPrefix(u.Path, "/") {
		return ""
	}
	u.Fragment = ""
	return c.baseURL + u.String()
}

func matchesKeyword(link string) bool {
	lower := strings.ToLower(link)
	for _, kw := range linkKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// markVisited records a URL, reporting whether it was already seen
func (c *Crawler) markVisited(pageURL string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.visited[pageURL] {
		return true
	}
	c.visited[pageURL] = true
	return false
}

func (c *Crawler) countCrawled() {
	c.mu.Lock()
	c.stats.PagesCrawled++
	c.mu.Unlock()
}

func (c *Crawler) countFailed() {
	c.mu.Lock()
	c.stats.PagesFailed++
	c.mu.Unlock()
}

func (c *Crawler) countSkipped() {
	c.mu.Lock()
	c.stats.PagesSkipped++
	c.mu.Unlock()
}
