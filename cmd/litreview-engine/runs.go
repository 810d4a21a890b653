// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview-engine/internal/runstore"
	"github.com/pdiddy/litreview-engine/internal/synthesis"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect saved review runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.List(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No saved runs.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tITER\tSCORE\tPASS\tQUERY")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%t\t%s\n",
				r.ID, r.CreatedAt.Format(time.DateTime), r.Iterations, r.Score, r.Passed, r.Query)
		}
		return w.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print one saved review as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.Get(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("# %s\n\n", run.Query)
		fmt.Print(synthesis.RenderMarkdown(run.Review))
		fmt.Printf("\nScore %d after %d iteration(s), pass=%t\n",
			run.Critique.Score, run.Iterations, run.Critique.Pass)
		return nil
	},
}

func openStore() (*runstore.Store, error) {
	dbPath, _ := rootCmd.PersistentFlags().GetString("store")
	store, err := runstore.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening run store: %w", err)
	}
	return store, nil
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum number of runs to list")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
