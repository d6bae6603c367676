package mock

import (
	"context"

	"github.com/DervishD/sacamantecas"
)

// Compile-time interface verification.
var (
	_ sacamantecas.Source = (*Source)(nil)
	_ sacamantecas.Sink   = (*Sink)(nil)
)

// Source is a mock implementation of sacamantecas.Source.
type Source struct {
	ItemsFn func(ctx context.Context) ([]sacamantecas.Item, error)
}

func (s *Source) Items(ctx context.Context) ([]sacamantecas.Item, error) {
	return s.ItemsFn(ctx)
}

// Sink is a mock implementation of sacamantecas.Sink.
type Sink struct {
	WriteFn func(item sacamantecas.Item, rec *sacamantecas.Record) error
	CloseFn func() error
}

func (s *Sink) Write(item sacamantecas.Item, rec *sacamantecas.Record) error {
	return s.WriteFn(item, rec)
}

func (s *Sink) Close() error {
	return s.CloseFn()
}
