package main

import (
	"fmt"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/roster"
)

// checkRoster loads the roster as the API would and prints each group with its members.
func (cli *commandLine) checkRoster(path string) error {
	dir, err := roster.Load(path, cli.conf.Auth.Mode == core.AuthModeCode)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "%d students in %d groups\n", dir.Len(), len(dir.Groups()))
	for _, g := range dir.Groups() {
		members := dir.Group(g)
		fmt.Fprintf(cli.out, "group %s (%d):\n", g, len(members))
		for _, m := range members {
			fmt.Fprintf(cli.out, "  %s - %s\n", m.ID, m.Name)
		}
	}
	return nil
}
