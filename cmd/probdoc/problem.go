package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/probdoc"
)

// Run executes the problem command.
func (c *ProblemCmd) Run(deps *Dependencies) error {
	opts, err := c.Options()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", probdoc.ErrorMessage(err))
		return err
	}

	if err := deps.Session.Initialize(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", probdoc.ErrorMessage(err))
		return err
	}
	defer deps.Session.Close()

	rec, err := deps.Session.FetchProblem(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", probdoc.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	if opts.UseAI && opts.APIKey == "" {
		fmt.Fprintln(deps.Stderr, "warning: no API key set, rendering from the template")
	}
	res := deps.Session.Transform(deps.Ctx, rec, opts)
	if err := res.Err(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", probdoc.ErrorMessage(err))
		return err
	}
	fmt.Fprint(deps.Stdout, res.Data)
	return nil
}
