package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/KaramelBytes/autolysis-cli/internal/loader"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	abOpts        analyzeOptions
	abOutRoot     string
	abFailFast    bool
	abQuiet       bool
	abConcurrency int
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Run the analyze pipeline over several CSV/TSV/XLSX files with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		total := len(files)
		used := map[string]int{}
		dirs := make([]string, total)
		for i, path := range files {
			dirs[i] = batchOutputDir(abOutRoot, path, used)
		}

		g, gctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(max(abConcurrency, 1))
		var failed atomic.Int64
		for i, path := range files {
			o := abOpts
			o.outputDir = dirs[i]
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				if !abQuiet {
					fmt.Printf("[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
				}
				if err := runAnalyze(gctx, path, o); err != nil {
					failed.Add(1)
					if abFailFast {
						return eris.Wrapf(err, "analyze %s", path)
					}
					zap.L().Warn("batch item failed", zap.String("file", path), zap.Error(err))
					fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if n := failed.Load(); n > 0 {
			return fmt.Errorf("%d of %d file(s) failed", n, total)
		}
		if !abQuiet {
			fmt.Printf("✓ Analyzed %d file(s)\n", total)
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, and
// returns a sorted list without duplicates.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// batchOutputDir names one output directory per dataset under root, adding a
// __N suffix when the name is already taken, including by an earlier
// suffixed name.
func batchOutputDir(root, path string, used map[string]int) string {
	base := loader.DatasetName(path)
	name := base
	for n := 2; used[name] > 0; n++ {
		name = base + "__" + strconv.Itoa(n)
	}
	used[name]++
	if root == "" {
		return name
	}
	return filepath.Join(root, name)
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	f := analyzeBatchCmd.Flags()
	f.StringVar(&abOutRoot, "output-root", "", "directory that receives one output folder per dataset (default: current dir)")
	f.BoolVar(&abFailFast, "fail-fast", false, "stop at the first file that fails")
	f.BoolVarP(&abQuiet, "quiet", "q", false, "suppress progress output")
	f.IntVarP(&abConcurrency, "concurrency", "j", 1, "number of files processed in parallel")
	addPipelineFlags(analyzeBatchCmd, &abOpts)
}
