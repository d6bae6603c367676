package mock

import (
	"context"

	"github.com/DervishD/sacamantecas"
)

var _ sacamantecas.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of sacamantecas.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, siteURL string, filter *sacamantecas.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, siteURL string, filter *sacamantecas.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, siteURL, filter)
}
