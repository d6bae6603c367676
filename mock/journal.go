package mock

import (
	"context"

	"github.com/DervishD/sacamantecas"
)

var _ sacamantecas.Journal = (*Journal)(nil)

// Journal is a mock implementation of sacamantecas.Journal.
type Journal struct {
	BeginRunFn  func(ctx context.Context) (*sacamantecas.Run, error)
	EndRunFn    func(ctx context.Context, run *sacamantecas.Run) error
	RecordFn    func(ctx context.Context, entry *sacamantecas.JournalEntry) error
	SucceededFn func(ctx context.Context, uri string) (bool, error)
	RunsFn      func(ctx context.Context, limit int) ([]*sacamantecas.Run, error)
	CloseFn     func() error
}

func (j *Journal) BeginRun(ctx context.Context) (*sacamantecas.Run, error) {
	return j.BeginRunFn(ctx)
}

func (j *Journal) EndRun(ctx context.Context, run *sacamantecas.Run) error {
	return j.EndRunFn(ctx, run)
}

func (j *Journal) Record(ctx context.Context, entry *sacamantecas.JournalEntry) error {
	return j.RecordFn(ctx, entry)
}

func (j *Journal) Succeeded(ctx context.Context, uri string) (bool, error) {
	return j.SucceededFn(ctx, uri)
}

func (j *Journal) Runs(ctx context.Context, limit int) ([]*sacamantecas.Run, error) {
	return j.RunsFn(ctx, limit)
}

func (j *Journal) Close() error {
	return j.CloseFn()
}
