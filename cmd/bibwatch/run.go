// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibwatch/internal/pipeline"
	"github.com/pdiddy/bibwatch/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run \"<query text>\"",
	Short: "Run a query against the academic sources and diff against the prior run",
	Long: `Run fetches the query from every selected source, normalizes and merges
the results into one record per publication, diffs the merged set against
the most recent completed run of the same query, and writes the exports
under the output directory.

The first run of a query is its baseline: the change report is empty.
Interrupting a run keeps whatever was fetched; the partial result is still
merged and persisted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		flags := cmd.Flags()
		if v, _ := flags.GetString("contact"); v != "" {
			cfg.HTTP.Contact = v
		}
		cfg.HTTP.Contact = secretDefault("contact-email", cfg.HTTP.Contact)
		if cfg.HTTP.Contact == "" {
			cfg.HTTP.Contact = secretDefault("openalex-email", "")
		}
		if v, _ := flags.GetString("out"); v != "" {
			cfg.Output.Root = v
		}
		if v, _ := flags.GetStringSlice("formats"); len(v) > 0 {
			cfg.Output.Formats = v
		}

		q := types.Query{Text: args[0]}
		q.FromYear, _ = flags.GetInt("from")
		q.ToYear, _ = flags.GetInt("to")
		q.PerSourceLimit, _ = flags.GetInt("limit")
		if v, _ := flags.GetStringSlice("sources"); len(v) > 0 {
			for _, s := range v {
				q.Include = append(q.Include, types.Source(strings.TrimSpace(s)))
			}
		}
		if v, _ := flags.GetStringSlice("exclude"); len(v) > 0 {
			for _, s := range v {
				q.Exclude = append(q.Exclude, types.Source(strings.TrimSpace(s)))
			}
		}

		// Interruption cancels the fetch; the pipeline persists what
		// it already has before exiting.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		coord := pipeline.New(cfg, os.Stderr)
		run, err := coord.Run(ctx, q)
		if err != nil {
			if run != nil {
				return fmt.Errorf("run %s failed: %w", run.ID, err)
			}
			return err
		}

		printRunSummary(run)
		return nil
	},
}

func printRunSummary(run *types.Run) {
	fmt.Printf("Run:      %s\n", run.ID)
	fmt.Printf("Query:    %q", run.Query.Text)
	if run.Query.FromYear != 0 || run.Query.ToYear != 0 {
		fmt.Printf(" (%s)", yearRange(run.Query))
	}
	fmt.Println()
	fmt.Printf("Records:  %d merged from %d fetched\n", run.Counts.Merged, run.Counts.Fetched)
	if len(run.Degraded) > 0 {
		names := make([]string, len(run.Degraded))
		for i, s := range run.Degraded {
			names[i] = string(s)
		}
		fmt.Printf("Degraded: %s\n", strings.Join(names, ", "))
	}
	if run.Baseline {
		fmt.Println("Changes:  baseline run, nothing to compare against")
	} else {
		fmt.Printf("Changes:  +%d -%d ~%d (vs %s)\n",
			run.Counts.DiffAdded, run.Counts.DiffRemoved, run.Counts.DiffChanged, run.PreviousRunID)
	}
	formats := make([]string, 0, len(run.Artifacts))
	for format := range run.Artifacts {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	for _, format := range formats {
		fmt.Printf("  %-7s %s\n", format, run.Artifacts[format])
	}
}

func yearRange(q types.Query) string {
	from, to := "", ""
	if q.FromYear != 0 {
		from = fmt.Sprintf("%d", q.FromYear)
	}
	if q.ToYear != 0 {
		to = fmt.Sprintf("%d", q.ToYear)
	}
	return from + ".." + to
}

func init() {
	runCmd.Flags().Int("from", 0, "earliest publication year, inclusive")
	runCmd.Flags().Int("to", 0, "latest publication year, inclusive")
	runCmd.Flags().Int("limit", 0, "per-source record cap (default from config)")
	runCmd.Flags().StringSlice("sources", nil, "restrict to these sources (crossref, openalex, doaj, arxiv)")
	runCmd.Flags().StringSlice("exclude", nil, "skip these sources")
	runCmd.Flags().StringSlice("formats", nil, "export formats (csv, json, sqlite, bibtex; default all)")
	runCmd.Flags().String("out", "", "output root directory (default from config)")
	runCmd.Flags().String("contact", "", "contact email for polite API access")

	rootCmd.AddCommand(runCmd)
}
