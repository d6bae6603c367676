package main

import (
	"fmt"

	"github.com/DervishD/sacamantecas"
)

// Run executes the discover command. Discovered URLs are printed to
// stdout, one per line, so the output can be piped into a source list.
func (c *DiscoverCmd) Run(deps *Dependencies) error {
	var filter *sacamantecas.URLFilter
	if !c.All {
		filter = profileFilter(deps.Registry.Profiles())
	}

	urls, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, c.Site, filter)
	if err != nil {
		return err
	}

	for _, u := range urls {
		fmt.Fprintln(deps.Stdout, u)
	}
	if !c.All {
		fmt.Fprintf(deps.Stderr, "%d URLs match a profile\n", len(urls))
	}
	return nil
}

// profileFilter keeps only URLs some profile would extract from.
func profileFilter(profiles []*sacamantecas.Profile) *sacamantecas.URLFilter {
	include := make([]*sacamantecas.Pattern, 0, len(profiles))
	for _, p := range profiles {
		include = append(include, p.URL)
	}
	return &sacamantecas.URLFilter{Include: include}
}
