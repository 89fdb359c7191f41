// Package report assembles the Markdown README for an analysis run.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/autolysis-cli/internal/chart"
	"github.com/KaramelBytes/autolysis-cli/internal/utils"
)

// FileName is the report written into the output directory.
const FileName = "README.md"

// Render returns the report body: a title, the narrative, then one image
// reference per chart in artifact order.
func Render(narrative string, charts []chart.Artifact) string {
	var b strings.Builder
	b.WriteString("# Analysis Report\n\n")
	b.WriteString(strings.TrimSpace(narrative))
	b.WriteString("\n\n")
	for _, c := range charts {
		name := c.Name()
		fmt.Fprintf(&b, "![%s](%s)\n\n", name, name)
	}
	return b.String()
}

// Write renders the report into outDir/README.md and returns its path.
func Write(outDir, narrative string, charts []chart.Artifact) (string, error) {
	if err := utils.EnsureDir(outDir); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, FileName)
	if err := utils.SafeWriteFile(path, []byte(Render(narrative, charts))); err != nil {
		return "", err
	}
	return path, nil
}
