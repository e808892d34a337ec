package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cognicore/tagnet/pkg/tagnet/maintenance"
	"github.com/cognicore/tagnet/pkg/tagnet/store/sqlite"
)

type runsOptions struct {
	dbPath string
	limit  int
	keep   int
}

func newRunsCmd() *cobra.Command {
	opts := &runsOptions{}
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs stored by build --db",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListRuns(cmd, opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite run store (required)")
	cmd.MarkPersistentFlagRequired("db")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "runs to list, newest first; 0 lists all")

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrune(cmd, opts)
		},
	}
	prune.Flags().IntVar(&opts.keep, "keep", 5, "runs to keep")
	cmd.AddCommand(prune)
	return cmd
}

func runListRuns(cmd *cobra.Command, opts *runsOptions) error {
	ctx := cmd.Context()
	st, err := sqlite.OpenSQLite(ctx, opts.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	infos, err := st.ListRuns(ctx, opts.limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tMIN\tRECORDS\tNODES\tEDGES\tMODULARITY")
	for _, r := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%.3f\n",
			r.ID,
			r.CreatedAt.Format(time.RFC3339),
			r.MinEdgeSupport,
			humanize.Comma(r.Records),
			humanize.Comma(int64(r.NodeCount)),
			humanize.Comma(int64(r.EdgeCount)),
			r.Modularity,
		)
	}
	return tw.Flush()
}

func runPrune(cmd *cobra.Command, opts *runsOptions) error {
	ctx := cmd.Context()
	st, err := sqlite.OpenSQLite(ctx, opts.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	p := maintenance.Pruner{Store: st, Keep: opts.keep}
	res, err := p.Prune(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "kept %d, deleted %d\n", res.Kept, len(res.Deleted))
	if res.Errors > 0 {
		return fmt.Errorf("%d runs could not be deleted", res.Errors)
	}
	return nil
}
