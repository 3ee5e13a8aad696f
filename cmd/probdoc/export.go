package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fwojciec/probdoc"
	"github.com/fwojciec/probdoc/scrape"
	"golang.org/x/sync/errgroup"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	req := scrape.WalkRequest{CatalogURL: c.URL, Selected: c.Topic}
	if !c.Original {
		opts, err := c.Options()
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", probdoc.ErrorMessage(err))
			return err
		}
		if opts.UseAI && opts.APIKey == "" {
			fmt.Fprintln(deps.Stderr, "warning: no API key set, rendering from the template")
		}
		req.Transform = &opts
	}

	if err := deps.Session.Initialize(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", probdoc.ErrorMessage(err))
		return err
	}
	defer deps.Session.Close()

	progress := func(ev scrape.ProgressEvent) {
		switch ev.Type {
		case scrape.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Found %d problems (run %s)\n", ev.Total, ev.RunID)
		case scrape.ProgressCompleted:
			mark := ""
			if ev.Generated {
				mark = " [ai]"
			}
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s%s\n", ev.Completed, ev.Total, ev.Path, mark)
		case scrape.ProgressSkipped:
			fmt.Fprintf(deps.Stderr, "  skip %s: no usable content\n", ev.URL)
		case scrape.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  fail %s: %s\n", ev.URL, probdoc.ErrorMessage(ev.Error))
		}
	}

	// The first interrupt lets the current item finish; the walk then stops
	// and the summary is still printed.
	sigCtx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result *scrape.WalkResult
	done := make(chan struct{})
	g, gctx := errgroup.WithContext(deps.Ctx)
	g.Go(func() error {
		defer close(done)
		var err error
		result, err = deps.Session.RunCatalogWalk(gctx, req, progress)
		return err
	})
	g.Go(func() error {
		select {
		case <-sigCtx.Done():
			if deps.Ctx.Err() == nil {
				fmt.Fprintln(deps.Stderr, "interrupted, stopping after the current problem")
			}
			deps.Session.Cancel()
		case <-done:
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", probdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d of %d problems (%d skipped, %d failed, %d generated)\n",
		result.Exported, result.Total, result.Skipped, result.Failed(), result.Generated)
	if result.Cancelled {
		fmt.Fprintln(deps.Stdout, "Cancelled before completion.")
	}
	return nil
}
