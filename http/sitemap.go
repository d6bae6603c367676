package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"

	"github.com/DervishD/sacamantecas"
	"github.com/DervishD/sacamantecas/bloom"
)

// Sitemap walking limits. Indexes nest one level at most, which is all
// real catalogue sites use, and the duplicate filter is sized for large
// sites. A false positive drops a URL, so the rate is kept low.
const (
	maxIndexDepth              = 1
	expectedSiteURLs           = 100000
	duplicateFalsePositiveRate = 0.001
)

// Ensure SitemapService implements sacamantecas.SitemapService.
var _ sacamantecas.SitemapService = (*SitemapService)(nil)

// SitemapService discovers candidate record URLs from a catalogue site's
// sitemaps.
type SitemapService struct {
	client *http.Client
	limit  int
}

// SitemapOption configures a SitemapService.
type SitemapOption func(*SitemapService)

// WithLimit caps how many URLs discovery returns. Zero means no cap.
func WithLimit(n int) SitemapOption {
	return func(s *SitemapService) {
		s.limit = n
	}
}

// NewSitemapService creates a new SitemapService with the given HTTP
// client. If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client, opts ...SitemapOption) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	s := &SitemapService{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DiscoverURLs finds URLs from a site's sitemaps. Sitemap locations come
// from robots.txt, with <site>/sitemap.xml as the fallback. Returns an
// empty slice (not nil) if no sitemaps are found.
//
// When siteURL has a non-root path (e.g. https://example.com/opac/),
// only URLs under that prefix are returned. The filter, when non-nil,
// prunes the results further.
func (s *SitemapService) DiscoverURLs(ctx context.Context, siteURL string, filter *sacamantecas.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site URL: %w", err)
	}

	pathPrefix := base.Path
	if pathPrefix == "/" {
		pathPrefix = ""
	}

	// Sitemaps live at the root of the site whatever the given path.
	root := *base
	root.Path = ""

	sitemaps, err := s.findSitemaps(ctx, &root)
	if err != nil {
		return nil, err
	}
	if len(sitemaps) == 0 {
		return []string{}, nil
	}

	walk := &sitemapWalk{
		service:    s,
		prefix:     pathPrefix,
		filter:     filter,
		walked:     make(map[string]bool),
		duplicates: bloom.NewFilter(expectedSiteURLs, duplicateFalsePositiveRate),
		urls:       []string{},
	}
	for _, sitemapURL := range sitemaps {
		if err := walk.walk(ctx, sitemapURL, 0); err != nil {
			return nil, err
		}
		if walk.full() {
			break
		}
	}

	return walk.urls, nil
}

// sitemapWalk accumulates URLs over a whole sitemap tree. URLs are
// deduplicated, filtered and capped as they are collected, so the walk
// can stop as soon as the cap is reached.
type sitemapWalk struct {
	service    *SitemapService
	prefix     string
	filter     *sacamantecas.URLFilter
	walked     map[string]bool
	duplicates *bloom.Filter
	urls       []string
}

// walk processes one sitemap document, descending into index entries.
func (w *sitemapWalk) walk(ctx context.Context, sitemapURL string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.walked[sitemapURL] {
		return nil
	}
	w.walked[sitemapURL] = true

	body, err := w.service.fetchBody(ctx, sitemapURL)
	if err != nil {
		return err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return fmt.Errorf("parsing sitemap XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return fmt.Errorf("empty sitemap XML")
	}

	if root.Tag == "sitemapindex" {
		// Indexes nested beyond maxIndexDepth are left unwalked.
		if depth >= maxIndexDepth {
			return nil
		}
		for _, sitemap := range root.SelectElements("sitemap") {
			child := locText(sitemap)
			if child == "" {
				continue
			}
			if err := w.walk(ctx, child, depth+1); err != nil {
				return err
			}
			if w.full() {
				return nil
			}
		}
		return nil
	}

	for _, urlEl := range root.SelectElements("url") {
		w.collect(locText(urlEl))
		if w.full() {
			return nil
		}
	}
	return nil
}

// collect adds one URL unless it is out of scope, filtered out or
// already seen.
func (w *sitemapWalk) collect(u string) {
	if u == "" {
		return
	}
	if w.prefix != "" && !underPathPrefix(u, w.prefix) {
		return
	}
	if !w.filter.Match(u) {
		return
	}
	if w.duplicates.Seen(u) {
		return
	}
	w.urls = append(w.urls, u)
}

// full reports whether the cap has been reached.
func (w *sitemapWalk) full() bool {
	return w.service.limit > 0 && len(w.urls) >= w.service.limit
}

// locText returns the trimmed text of an element's <loc> child.
func locText(el *etree.Element) string {
	loc := el.SelectElement("loc")
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(loc.Text())
}

// underPathPrefix checks whether a URL's path starts with prefix at a
// path boundary, so /opac matches /opac/record/1 but not /opac2.
func underPathPrefix(rawURL, prefix string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(parsed.Path, prefix)
}

// findSitemaps discovers sitemap URLs from robots.txt or falls back to
// /sitemap.xml.
func (s *SitemapService) findSitemaps(ctx context.Context, root *url.URL) ([]string, error) {
	robotsURL := root.ResolveReference(&url.URL{Path: "/robots.txt"})
	sitemaps, err := s.robotsSitemaps(ctx, robotsURL.String())
	if err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}

	sitemapURL := root.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	exists, err := s.urlExists(ctx, sitemapURL.String())
	if err != nil {
		// Propagate context errors, treat other errors as "not found".
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if exists {
		return []string{sitemapURL.String()}, nil
	}

	return nil, nil
}

// robotsSitemaps extracts Sitemap: declarations from robots.txt.
func (s *SitemapService) robotsSitemaps(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.fetchBody(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// The directive name is case-insensitive per the robots spec.
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			sitemapURL := strings.TrimSpace(line[len("sitemap:"):])
			if sitemapURL != "" {
				sitemaps = append(sitemaps, sitemapURL)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}

	return sitemaps, nil
}

// fetchBody fetches a URL and returns the response body.
func (s *SitemapService) fetchBody(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, targetURL)
	}

	return resp.Body, nil
}

// urlExists checks if a URL returns 200 OK.
func (s *SitemapService) urlExists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent())

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
