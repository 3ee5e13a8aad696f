package main

import (
	"fmt"

	"github.com/fwojciec/probdoc"
)

// Run executes the languages command.
func (c *LanguagesCmd) Run(deps *Dependencies) error {
	for _, l := range probdoc.Languages() {
		fmt.Fprintf(deps.Stdout, "%-12s %s\n", l.ID, l.Name)
	}
	return nil
}
