package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/imagendo/radeval/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted evaluation runs",
	Long: `Lists evaluation runs saved with 'evaluate --save' or 'run --save', most
recent first. Filter by dataset or provider to compare models over time.`,
	RunE: runRuns,
}

func init() {
	f := runsCmd.Flags()
	f.String("dataset", "", "filter by dataset name")
	f.String("provider", "", "filter by provider name")
	f.Int("limit", 20, "maximum number of runs to list")

	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	datasetName, _ := cmd.Flags().GetString("dataset")
	providerName, _ := cmd.Flags().GetString("provider")
	limit, _ := cmd.Flags().GetInt("limit")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	runs, err := st.ListRuns(ctx, store.RunFilter{
		Dataset:  datasetName,
		Provider: providerName,
		Limit:    limit,
	})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tDATASET\tPROVIDER\tMODEL\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Dataset, r.Provider, r.Model, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "runs: flush table")
	}
	return nil
}
