package crawler

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alevsk/podsec-advisor/internal/schema"
)

// Parser turns raw documentation pages into normalized ParsedPage values
type Parser struct{}

// NewParser creates a content parser
func NewParser() *Parser {
	return &Parser{}
}

// mainContentSelectors are tried in order to locate the documentation body.
// The kubernetes.io docs theme wraps content in .td-content.
var mainContentSelectors = []string{"main", "article", ".td-content", "#content", ".content"}

var headingSelector = "h1, h2, h3, h4, h5, h6"

// ParseHTML extracts the title, cleaned body text and heading-delimited
// sections from an HTML documentation page
func (p *Parser) ParseHTML(html []byte, url, version string) (schema.ParsedPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return schema.ParsedPage{}, fmt.Errorf("parse html from %s: %w", url, err)
	}

	// Chrome elements carry no documentation content
	doc.Find("nav, footer, header, aside, script, style, noscript").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	main := doc.Find("body")
	for _, selector := range mainContentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			main = sel
			break
		}
	}

	page := schema.ParsedPage{
		Title:    title,
		Content:  CleanContent(main.Text()),
		Metadata: map[string]string{},
		URL:      url,
		Version:  version,
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		page.Metadata["description"] = strings.TrimSpace(desc)
	}

	main.Find(headingSelector).Each(func(_ int, h *goquery.Selection) {
		heading := strings.TrimSpace(h.Text())
		if heading == "" {
			return
		}
		content := CleanContent(h.NextUntil(headingSelector).Text())
		page.Sections = append(page.Sections, schema.PageSection{
			Title:   heading,
			Level:   headingLevel(goquery.NodeName(h)),
			Content: content,
		})
	})

	return page, nil
}

var (
	markdownHeading    = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	markdownCodeFence  = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\n(.*?)```")
	frontMatterPattern = regexp.MustCompile(`(?s)\A---\n(.*?)\n---\n`)
)

// ParseMarkdown extracts front-matter metadata and heading-delimited
// sections from a Markdown documentation page
func (p *Parser) ParseMarkdown(markdown []byte, url, version string) (schema.ParsedPage, error) {
	text := string(markdown)

	metadata := map[string]string{}
	if m := frontMatterPattern.FindStringSubmatch(text); m != nil {
		for _, line := range strings.Split(m[1], "\n") {
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			metadata[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"'`)
		}
		text = text[len(m[0]):]
	}

	page := schema.ParsedPage{
		Content:  CleanContent(text),
		Metadata: metadata,
		URL:      url,
		Version:  version,
	}

	headings := markdownHeading.FindAllStringSubmatchIndex(text, -1)
	for i, h := range headings {
		level := h[3] - h[2]
		heading := strings.TrimSpace(text[h[4]:h[5]])

		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1][0]
		}
		content := CleanContent(text[h[1]:end])

		if page.Title == "" && level == 1 {
			page.Title = heading
		}
		page.Sections = append(page.Sections, schema.PageSection{
			Title:   heading,
			Level:   level,
			Content: content,
		})
	}

	if page.Title == "" {
		page.Title = metadata["title"]
	}
	return page, nil
}

// CodeBlocks returns the contents of all fenced code blocks in a Markdown
// document
func CodeBlocks(markdown string) []string {
	var blocks []string
	for _, m := range markdownCodeFence.FindAllStringSubmatch(markdown, -1) {
		if block := strings.TrimSpace(m[1]); block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankRuns       = regexp.MustCompile(`\n{3,}`)
)

// CleanContent normalizes extracted text: collapses runs of spaces, trims
// line edges and limits blank-line runs
func CleanContent(s string) string {
	s = horizontalSpace.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func headingLevel(nodeName string) int {
	if len(nodeName) == 2 && nodeName[0] == 'h' {
		return int(nodeName[1] - '0')
	}
	return 0
}
