package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"p7mx/internal/pipeline"
	"p7mx/internal/queue"
)

// printSummary writes the end-of-run report: aggregate counts, then either
// a full results table (interactive terminals) or a short failure listing.
func printSummary(w io.Writer, sum pipeline.Summary, items []queue.Item, interactive bool) {
	fmt.Fprintf(w, "\nProcessed %d files in %s: %d extracted, %d failed\n",
		sum.Total, sum.Elapsed.Round(time.Millisecond), sum.Done, sum.Failed)

	if sum.Cancelled {
		pending := 0
		for _, item := range items {
			if item.Status == queue.StatusPending {
				pending++
			}
		}
		fmt.Fprintf(w, "Run cancelled; %d files left pending\n", pending)
	}

	if interactive && len(items) > 0 {
		fmt.Fprintln(w, renderResultsTable(items))
		return
	}

	if sum.Failed > 0 {
		fmt.Fprintln(w, "Failed files:")
		shown := 0
		for _, item := range items {
			if item.Status != queue.StatusError {
				continue
			}
			if shown == maxFailureLines {
				fmt.Fprintf(w, "  ... and %d more\n", sum.Failed-shown)
				break
			}
			fmt.Fprintf(w, "  - %s: %s\n", item.SourcePath, item.Detail)
			shown++
		}
	}
}

func renderResultsTable(items []queue.Item) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "File", "Status", "Detail"})

	for _, item := range items {
		tw.AppendRow(table.Row{item.SequenceID, item.FileName, string(item.Status), item.Detail})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, WidthMax: 48},
	})
	return tw.Render()
}
