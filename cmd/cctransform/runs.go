package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/karina-jasmin/quran-collate/pkg/runlog"
)

// RunsCmd lists the run ledger, newest first.
type RunsCmd struct {
	Limit  int    `short:"n" default:"20" help:"Number of runs to show; 0 shows all"`
	Failed bool   `help:"Only show failed runs"`
	ID     string `arg:"" optional:"" help:"Show one run"`

	out io.Writer
}

func (c *RunsCmd) Run(g *Globals) error {
	cfg, _, err := g.setup()
	if err != nil {
		return err
	}
	ledger, err := openLedger(cfg)
	if err != nil {
		return err
	}
	if ledger == nil {
		return errors.New("run ledger disabled (runs_db is empty)")
	}
	defer ledger.Close()

	w := stdout(c.out)
	if c.ID != "" {
		r, err := ledger.Get(c.ID)
		if err != nil {
			return err
		}
		printRun(w, r)
		return nil
	}

	runs, err := ledger.List(c.Limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tMODE\tTRANSPORT\tSTATUS\tWORDS\tINPUT\t")
	for _, r := range runs {
		if c.Failed && r.Status != runlog.StatusFailed {
			continue
		}
		fmt.Fprintf(tw, "%.8s\t%s\t%s\t%s\t%s\t%d\t%s\t\n", r.ID, formatMillis(r.StartedAt),
			r.Mode, r.Transport, r.Status, r.Words, r.Input)
	}
	return tw.Flush()
}

func printRun(w io.Writer, r *runlog.Run) {
	fmt.Fprintf(w, "id:        %s\n", r.ID)
	fmt.Fprintf(w, "mode:      %s (%s)\n", r.Mode, r.Transport)
	fmt.Fprintf(w, "input:     %s\n", r.Input)
	fmt.Fprintf(w, "digest:    %s\n", r.InputDigest)
	fmt.Fprintf(w, "tables:    %s %.12s\n", r.TablesID, r.TablesDigest)
	fmt.Fprintf(w, "source:    %s\n", r.Source)
	fmt.Fprintf(w, "output:    %s\n", r.Output)
	fmt.Fprintf(w, "words:     %d\n", r.Words)
	fmt.Fprintf(w, "clusters:  %d\n", r.Clusters)
	fmt.Fprintf(w, "status:    %s\n", r.Status)
	fmt.Fprintf(w, "started:   %s\n", formatMillis(r.StartedAt))
	if r.FinishedAt != nil {
		fmt.Fprintf(w, "finished:  %s\n", formatMillis(*r.FinishedAt))
	}
	if r.Error != nil {
		fmt.Fprintf(w, "error:     %s\n", *r.Error)
	}
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Format(time.DateTime)
}
