package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/KaramelBytes/autolysis-cli/internal/analysis"
	"github.com/KaramelBytes/autolysis-cli/internal/loader"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	profInput inputFlags
	profJSON  bool
	profTop   int
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Print the statistical profile of a dataset without charts or narrative",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := profInput.options()
		if err != nil {
			return err
		}
		tbl, err := loader.Load(args[0], opt)
		if err != nil {
			return err
		}
		res, err := analysis.Analyze(tbl, analysis.Options{Logger: zap.L()})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if profJSON {
			b, err := res.JSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(b))
			return err
		}
		return writeProfile(out, res, profTop)
	},
}

// writeProfile prints one row per column, then the strongest correlations.
func writeProfile(w io.Writer, res *analysis.AnalysisResult, top int) error {
	fmt.Fprintf(w, "%s: %d rows × %d columns\n", res.Name, res.Shape.Rows, res.Shape.Columns)

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()
	table.Header([]string{"Column", "Type", "Missing", "Count", "Mean", "Std", "Min", "Median", "Max", "Top"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	var data [][]string
	for _, name := range res.ColumnOrder {
		cs, _ := res.Summary.Get(name)
		missing := strconv.Itoa(res.Missing[name])
		switch {
		case res.Shape.Rows > 0 && res.Missing[name] == res.Shape.Rows:
			missing = red(missing)
		case res.Missing[name] > 0:
			missing = yellow(missing)
		}
		row := []string{name, res.Columns[name], missing, strconv.Itoa(cs.Count)}
		if cs.IsNumeric() {
			row = append(row, num(cs.Mean), num(cs.Std), num(cs.Min), num(cs.Median), num(cs.Max), "")
		} else {
			topVal := ""
			if cs.Count > 0 {
				topVal = fmt.Sprintf("%s (%d)", cs.Top, cs.Freq)
			}
			row = append(row, "", "", "", "", "", topVal)
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	switch res.CorrelationStatus {
	case analysis.StatusComputed:
		pairs := res.TopCorrelations(top)
		if len(pairs) > 0 {
			fmt.Fprintln(w, "Top correlations:")
			for _, p := range pairs {
				fmt.Fprintf(w, "  %s ~ %s: %+.3f\n", p.A, p.B, p.R)
			}
		}
	case analysis.StatusFailed:
		fmt.Fprintln(w, yellow("correlations unavailable"))
	}
	if res.HasOutliers() {
		fmt.Fprintf(w, "Outlier rows (IQR): %d\n", len(*res.Outliers))
	} else if res.OutliersStatus == analysis.StatusComputed {
		fmt.Fprintln(w, "Outlier rows (IQR): 0")
	}
	return nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func init() {
	rootCmd.AddCommand(profileCmd)
	f := profileCmd.Flags()
	f.StringVar(&profInput.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | 'pipe' (default by extension)")
	f.StringVar(&profInput.encoding, "encoding", "", "text encoding: auto or a label such as utf-8, latin1")
	f.StringVar(&profInput.sheet, "sheet", "", "XLSX: sheet name (default: first sheet)")
	f.StringVar(&profInput.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	f.StringVar(&profInput.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	f.IntVar(&profInput.maxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	f.BoolVar(&profJSON, "json", false, "print the profile as JSON")
	f.IntVar(&profTop, "top", 5, "number of correlation pairs to print")
}
