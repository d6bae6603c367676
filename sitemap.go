package sacamantecas

import "context"

// SitemapService discovers URLs from catalogue site sitemaps.
type SitemapService interface {
	// DiscoverURLs finds URLs from a site's sitemaps.
	// It first checks robots.txt for sitemap directives, then falls back
	// to /sitemap.xml. Sitemap indexes are resolved one level deep.
	//
	// The filter can be used to include/exclude URLs by pattern.
	// If filter is nil, all URLs are returned.
	DiscoverURLs(ctx context.Context, siteURL string, filter *URLFilter) ([]string, error)
}

// URLFilter specifies patterns for including/excluding URLs.
type URLFilter struct {
	// Include patterns - if set, only URLs matching at least one pattern
	// are included.
	Include []*Pattern

	// Exclude patterns - URLs matching any pattern are excluded.
	// Exclude is applied after Include.
	Exclude []*Pattern
}

// Match returns true if the URL passes the filter.
// If the filter is nil, all URLs pass.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}

	if len(f.Include) > 0 {
		matched := false
		for _, p := range f.Include {
			if p.Match(url) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, p := range f.Exclude {
		if p.Match(url) {
			return false
		}
	}

	return true
}
