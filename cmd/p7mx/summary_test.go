package main

import (
	"strings"
	"testing"
	"time"

	"p7mx/internal/pipeline"
	"p7mx/internal/queue"
)

func sampleItems() []queue.Item {
	return []queue.Item{
		{SequenceID: 1, FileName: "ok.p7m", SourcePath: "/in/ok.p7m", Status: queue.StatusDone},
		{SequenceID: 2, FileName: "bad.p7m", SourcePath: "/in/bad.p7m", Status: queue.StatusError, Detail: "bad signature"},
	}
}

func TestPrintSummaryNonInteractive(t *testing.T) {
	var sb strings.Builder
	sum := pipeline.Summary{Total: 2, Done: 1, Failed: 1, Elapsed: 2 * time.Second}
	printSummary(&sb, sum, sampleItems(), false)

	out := sb.String()
	if !strings.Contains(out, "Processed 2 files") {
		t.Errorf("missing header in %q", out)
	}
	if !strings.Contains(out, "/in/bad.p7m: bad signature") {
		t.Errorf("missing failure line in %q", out)
	}
	if strings.Contains(out, "/in/ok.p7m") {
		t.Errorf("successful file listed as failure in %q", out)
	}
}

func TestPrintSummaryCancelled(t *testing.T) {
	var sb strings.Builder
	items := []queue.Item{
		{SequenceID: 1, FileName: "a.p7m", Status: queue.StatusDone},
		{SequenceID: 2, FileName: "b.p7m", Status: queue.StatusPending},
		{SequenceID: 3, FileName: "c.p7m", Status: queue.StatusPending},
	}
	printSummary(&sb, pipeline.Summary{Total: 3, Done: 1, Cancelled: true}, items, false)

	if !strings.Contains(sb.String(), "2 files left pending") {
		t.Errorf("missing pending count in %q", sb.String())
	}
}

func TestRenderResultsTable(t *testing.T) {
	out := renderResultsTable(sampleItems())
	for _, want := range []string{"File", "ok.p7m", "bad.p7m", "done", "error", "bad signature"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"extract", "check", "config"} {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}
