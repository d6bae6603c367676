package mock

import "github.com/DervishD/sacamantecas"

// Compile-time interface verification.
var (
	_ sacamantecas.Extractor         = (*Extractor)(nil)
	_ sacamantecas.ExtractorRegistry = (*ExtractorRegistry)(nil)
)

// Extractor is a mock implementation of sacamantecas.Extractor.
type Extractor struct {
	ExtractFn func(markup string) *sacamantecas.Record
}

func (e *Extractor) Extract(markup string) *sacamantecas.Record {
	return e.ExtractFn(markup)
}

// ExtractorRegistry is a mock implementation of sacamantecas.ExtractorRegistry.
type ExtractorRegistry struct {
	ForFn func(s sacamantecas.Strategy) (sacamantecas.Extractor, error)
}

func (r *ExtractorRegistry) For(s sacamantecas.Strategy) (sacamantecas.Extractor, error) {
	return r.ForFn(s)
}
