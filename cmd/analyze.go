package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/autolysis-cli/internal/ai"
	"github.com/KaramelBytes/autolysis-cli/internal/analysis"
	"github.com/KaramelBytes/autolysis-cli/internal/chart"
	"github.com/KaramelBytes/autolysis-cli/internal/history"
	"github.com/KaramelBytes/autolysis-cli/internal/loader"
	"github.com/KaramelBytes/autolysis-cli/internal/report"
	"github.com/KaramelBytes/autolysis-cli/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// AnalysisFile is written next to the report when --json is set.
const AnalysisFile = "analysis.json"

// analyzeOptions are the flags of one analyze pipeline run.
type analyzeOptions struct {
	input       inputFlags
	outputDir   string
	noNarrative bool
	provider    string
	model       string
	maxTokens   int
	json        bool
	maxCharts   int
	iqrFactor   float64
}

var anaOpts analyzeOptions

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Profile a dataset, render charts and write a narrated README.md",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd.Context(), args[0], anaOpts)
	},
}

func runAnalyze(ctx context.Context, path string, o analyzeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	log := zap.L()

	opt, err := o.input.options()
	if err != nil {
		return err
	}
	outDir := o.outputDir
	if outDir == "" {
		outDir = loader.DatasetName(path)
	}

	tbl, err := loader.Load(path, opt)
	if err != nil {
		return err
	}
	log.Debug("dataset loaded", zap.String("file", path), zap.Int("rows", tbl.Rows()), zap.Int("columns", tbl.Width()))

	res, err := analysis.Analyze(tbl, analysis.Options{IQRFactor: o.iqrFactor, Logger: log})
	if err != nil {
		return err
	}
	fmt.Printf("✓ Profiled %s: %d rows × %d columns\n", res.Name, res.Shape.Rows, res.Shape.Columns)
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %s unavailable: %s\n", w.Field, w.Err)
	}

	if err := utils.EnsureDir(outDir); err != nil {
		return err
	}
	if o.json {
		b, err := res.JSON()
		if err != nil {
			return err
		}
		p := filepath.Join(outDir, AnalysisFile)
		if err := utils.SafeWriteFile(p, b); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s\n", p)
	}

	copt := chart.Options{MaxDistributions: o.maxCharts, Logger: log}
	if cfg != nil {
		if copt.MaxDistributions <= 0 {
			copt.MaxDistributions = cfg.MaxDistributionCharts
		}
		copt.Width, copt.Height = cfg.ChartSizeIn, cfg.ChartSizeIn
	}
	charts, err := chart.Generate(tbl, outDir, copt)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Rendered %d chart(s) into %s\n", len(charts), outDir)

	body, narrated := narrate(ctx, res, charts, o)
	if !narrated {
		body = res.Markdown()
	}
	readme, err := report.Write(outDir, body, charts)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Wrote report to %s\n", readme)

	recordRun(ctx, history.Run{
		Dataset:           path,
		Rows:              res.Shape.Rows,
		Columns:           res.Shape.Columns,
		NumericColumns:    len(tbl.Numeric()),
		Charts:            len(charts),
		CorrelationStatus: string(res.CorrelationStatus),
		OutliersStatus:    string(res.OutliersStatus),
		Narrative:         narrated,
		OutputDir:         outDir,
		StartedAt:         started,
		Duration:          time.Since(started),
	})
	return nil
}

// narrate returns the model's report text, or false when narration is disabled
// or failed. Failures are warnings only.
func narrate(ctx context.Context, res *analysis.AnalysisResult, charts []chart.Artifact, o analyzeOptions) (string, bool) {
	if o.noNarrative {
		return "", false
	}
	provider, err := resolveProvider(o.provider)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; writing summary without narrative\n", err)
		return "", false
	}
	rt, err := newRuntime(provider)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; writing summary without narrative\n", err)
		return "", false
	}

	req := ai.NarrativeRequest{Result: res, Charts: charts, Model: o.model, MaxTokens: o.maxTokens}
	if cfg != nil {
		if req.Model == "" {
			req.Model = cfg.DefaultModel
		}
		if req.MaxTokens <= 0 {
			req.MaxTokens = cfg.MaxTokens
		}
		req.Temperature = cfg.Temperature
		req.PromptTokenLimit = cfg.PromptTokenLimit
	}
	if req.Model == "" {
		req.Model = ai.DefaultModel(provider)
	}

	fmt.Printf("⚙ Generating narrative with %s (model=%s) ...\n", provider, req.Model)
	n, err := ai.Narrate(ctx, rt, req)
	if err != nil {
		zap.L().Warn("narrative failed", zap.String("provider", provider), zap.Error(err))
		fmt.Fprintf(os.Stderr, "⚠ Warning: narrative unavailable: %v\n", err)
		if hint := ai.Hint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "  Hint: %s\n", hint)
		}
		return "", false
	}
	fmt.Printf("✓ Narrative received (prompt %d / completion %d tokens)\n", n.Usage.PromptTokens, n.Usage.CompletionTokens)
	if n.CostKnown {
		fmt.Printf("  Estimated cost: ~$%.4f\n", n.CostUSD)
	}
	if n.RequestID != "" {
		fmt.Printf("  Request ID: %s\n", n.RequestID)
	}
	return n.Text, true
}

// recordRun appends the run to the history store when enabled. Failures are warnings only.
func recordRun(ctx context.Context, run history.Run) {
	if cfg == nil || !cfg.HistoryEnabled || cfg.HistoryDB == "" {
		return
	}
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		zap.L().Warn("history unavailable", zap.Error(err))
		return
	}
	defer store.Close()
	id, err := store.Record(ctx, run)
	if err != nil {
		zap.L().Warn("history record failed", zap.Error(err))
		return
	}
	zap.L().Debug("run recorded", zap.String("id", id))
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	f := analyzeCmd.Flags()
	f.StringVarP(&anaOpts.outputDir, "output-dir", "o", "", "output directory (default: file name without extension)")
	addPipelineFlags(analyzeCmd, &anaOpts)
}

// addPipelineFlags registers the flags shared by analyze and analyze-batch.
func addPipelineFlags(c *cobra.Command, o *analyzeOptions) {
	f := c.Flags()
	f.StringVar(&o.input.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | 'pipe' (default by extension)")
	f.StringVar(&o.input.encoding, "encoding", "", "text encoding: auto or a label such as utf-8, latin1 (overrides config)")
	f.StringVar(&o.input.sheet, "sheet", "", "XLSX: sheet name (default: first sheet)")
	f.StringVar(&o.input.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	f.StringVar(&o.input.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	f.IntVar(&o.input.maxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	f.BoolVar(&o.noNarrative, "no-narrative", false, "skip the LLM call and write the profile summary as the report")
	f.StringVar(&o.provider, "provider", "", "AI provider: openrouter|aiproxy|ollama (overrides config)")
	f.StringVar(&o.model, "model", "", "model name (overrides config)")
	f.IntVar(&o.maxTokens, "max-tokens", 0, "max tokens for the narrative (overrides config)")
	f.BoolVar(&o.json, "json", false, "also write the analysis as "+AnalysisFile)
	f.IntVar(&o.maxCharts, "max-charts", 0, "number of distribution charts (default 3)")
	f.Float64Var(&o.iqrFactor, "iqr-factor", analysis.DefaultIQRFactor, "IQR fence multiplier for outliers")
}
