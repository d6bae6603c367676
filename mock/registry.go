package mock

import "github.com/DervishD/sacamantecas"

var _ sacamantecas.ProfileRegistry = (*ProfileRegistry)(nil)

// ProfileRegistry is a mock implementation of sacamantecas.ProfileRegistry.
type ProfileRegistry struct {
	MatchFn func(uri string) (*sacamantecas.Profile, error)
}

func (r *ProfileRegistry) Match(uri string) (*sacamantecas.Profile, error) {
	return r.MatchFn(uri)
}
