package main

import (
	"github.com/DervishD/sacamantecas"
	"github.com/DervishD/sacamantecas/goquery"
	"github.com/DervishD/sacamantecas/html"
)

// Extractors resolves extraction strategies to the extractor
// implementations shipped with the application.
type Extractors struct{}

var _ sacamantecas.ExtractorRegistry = Extractors{}

// For returns the extractor for the given strategy.
func (Extractors) For(s sacamantecas.Strategy) (sacamantecas.Extractor, error) {
	switch s := s.(type) {
	case *sacamantecas.ClassAttributeStrategy:
		return html.NewClassAttributeExtractor(s), nil
	case *sacamantecas.TaggedBlockStrategy:
		return goquery.NewTaggedBlockExtractor(s), nil
	}
	return nil, sacamantecas.Errorf(sacamantecas.EINVALID, "unknown extraction strategy %T", s)
}
