package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/KaramelBytes/autolysis-cli/internal/history"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var histLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or export past analyze runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()
		runs, err := store.List(cmd.Context(), histLimit)
		if err != nil {
			return err
		}
		return writeRuns(cmd.OutOrStdout(), runs)
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export <out.parquet>",
	Short: "Export all runs to a Parquet file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()
		runs, err := store.List(cmd.Context(), 0)
		if err != nil {
			return err
		}
		if err := history.ExportParquet(runs, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d run(s) to %s\n", len(runs), args[0])
		return nil
	},
}

func openHistory() (*history.Store, error) {
	if cfg == nil || cfg.HistoryDB == "" {
		return nil, fmt.Errorf("history database is not configured")
	}
	return history.Open(cfg.HistoryDB)
}

func writeRuns(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "(no runs)")
		return nil
	}
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()
	table.Header([]string{"Started", "Dataset", "Rows", "Cols", "Charts", "Correlation", "Outliers", "Narrative", "Duration"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	var data [][]string
	for _, r := range runs {
		narr := yellow("no")
		if r.Narrative {
			narr = green("yes")
		}
		data = append(data, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Dataset,
			strconv.Itoa(r.Rows),
			strconv.Itoa(r.Columns),
			strconv.Itoa(r.Charts),
			r.CorrelationStatus,
			r.OutliersStatus,
			narr,
			r.Duration.String(),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyListCmd.Flags().IntVar(&histLimit, "limit", 20, "maximum runs to show (0 = all)")
}
