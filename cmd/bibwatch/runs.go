// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibwatch/internal/store"
	"github.com/pdiddy/bibwatch/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past runs under the output directory",
	Long: `Runs lists the manifests of every recorded run, newest first: the query,
when it ran, how it ended, and what changed relative to its predecessor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if v, _ := cmd.Flags().GetString("out"); v != "" {
			cfg.Output.Root = v
		}

		manifests, err := store.New(cfg.Output.Root).ListRuns()
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(manifests, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling runs: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(manifests) == 0 {
			fmt.Printf("No runs under %s.\n", cfg.Output.Root)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSTARTED\tSTATE\tQUERY\tRECORDS\tCHANGES")
		for _, m := range manifests {
			changes := "baseline"
			if !m.Baseline {
				changes = fmt.Sprintf("+%d -%d ~%d", m.Counts.DiffAdded, m.Counts.DiffRemoved, m.Counts.DiffChanged)
			}
			if m.State != types.StateCompleted {
				changes = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%q\t%d\t%s\n",
				m.RunID, localTime(m.StartedAt), m.State, m.Query.Text, m.Counts.Merged, changes)
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().String("out", "", "output root directory (default from config)")
	runsCmd.Flags().Bool("json", false, "output manifests as JSON")

	rootCmd.AddCommand(runsCmd)
}
