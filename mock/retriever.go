package mock

import (
	"context"

	"github.com/DervishD/sacamantecas"
)

var _ sacamantecas.Retriever = (*Retriever)(nil)

// Retriever is a mock implementation of sacamantecas.Retriever.
type Retriever struct {
	RetrieveFn func(ctx context.Context, uri string) (*sacamantecas.Document, error)
	CloseFn    func() error
}

func (r *Retriever) Retrieve(ctx context.Context, uri string) (*sacamantecas.Document, error) {
	return r.RetrieveFn(ctx, uri)
}

func (r *Retriever) Close() error {
	return r.CloseFn()
}
