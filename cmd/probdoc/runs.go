package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/probdoc"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	if c.ID != "" {
		return c.showRun(deps)
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, probdoc.RunFilter{Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", probdoc.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Use 'probdoc export' to start one.")
		return nil
	}

	for _, r := range runs {
		status := ""
		if r.Cancelled {
			status = "  cancelled"
		} else if r.FinishedAt.IsZero() {
			status = "  unfinished"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %d/%d exported  %d failed  %s%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Exported, r.Total, r.Failed, r.CatalogURL, status)
	}
	return nil
}

func (c *RunsCmd) showRun(deps *Dependencies) error {
	run, err := deps.Runs.FindRunByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", probdoc.ErrorMessage(err))
		return err
	}
	items, err := deps.Runs.FindRunItems(deps.Ctx, run.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", probdoc.ErrorMessage(err))
		return err
	}

	mode := run.Template
	if mode == "" {
		mode = "original"
	}
	if run.UseAI {
		mode += "+ai"
	}
	fmt.Fprintf(deps.Stdout, "Run %s (%s)\n", run.ID, mode)
	fmt.Fprintf(deps.Stdout, "Catalog: %s\n", run.CatalogURL)
	fmt.Fprintf(deps.Stdout, "Completed %d of %d, exported %d, failed %d\n\n", run.Completed, run.Total, run.Exported, run.Failed)

	for _, it := range items {
		switch it.Status {
		case probdoc.ItemExported:
			fmt.Fprintf(deps.Stdout, "%-8s  %s\n", it.Status, it.Path)
		case probdoc.ItemFailed:
			fmt.Fprintf(deps.Stdout, "%-8s  %s  %s\n", it.Status, it.URL, it.Error)
		default:
			fmt.Fprintf(deps.Stdout, "%-8s  %s\n", it.Status, it.URL)
		}
	}
	return nil
}
