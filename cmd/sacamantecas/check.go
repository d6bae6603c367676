package main

import (
	"fmt"

	"github.com/DervishD/sacamantecas"
)

// Run executes the check command. Loading already validated the
// profiles, so all that is left is to show what was understood.
func (c *CheckCmd) Run(deps *Dependencies) error {
	profiles := deps.Registry.Profiles()
	for _, p := range profiles {
		fmt.Fprintf(deps.Stdout, "%s\n", p.Name)
		fmt.Fprintf(deps.Stdout, "  url: %s\n", p.URL)
		switch s := p.Strategy.(type) {
		case *sacamantecas.ClassAttributeStrategy:
			fmt.Fprintf(deps.Stdout, "  keys: class matching %s\n", s.Key)
			fmt.Fprintf(deps.Stdout, "  values: class matching %s\n", s.Value)
		case *sacamantecas.TaggedBlockStrategy:
			fmt.Fprintf(deps.Stdout, "  marker: <%s %s=%q>\n", s.Tag, s.Attr, s.Value)
		}
	}
	fmt.Fprintf(deps.Stdout, "%d profiles, all valid\n", len(profiles))
	return nil
}
