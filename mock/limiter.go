package mock

import (
	"context"

	"github.com/DervishD/sacamantecas"
)

var _ sacamantecas.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of sacamantecas.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, host string) error
}

func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	return d.WaitFn(ctx, host)
}
