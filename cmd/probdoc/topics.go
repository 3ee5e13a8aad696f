package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/probdoc"
)

// Run executes the topics command.
func (c *TopicsCmd) Run(deps *Dependencies) error {
	if err := deps.Session.Initialize(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", probdoc.ErrorMessage(err))
		return err
	}
	defer deps.Session.Close()

	topics, err := deps.Session.FetchCatalog(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", probdoc.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(topics)
	}

	if len(topics) == 0 {
		fmt.Fprintln(deps.Stdout, "No topics found.")
		return nil
	}
	for _, t := range topics {
		fmt.Fprintf(deps.Stdout, "%s  %s (%d problems)\n", t.ID, t.Name, len(t.Links))
	}
	fmt.Fprintf(deps.Stdout, "\n%d topics, %d problems\n", len(topics), probdoc.CountLinks(topics))
	return nil
}
