package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/autolysis-cli/internal/analysis"
	"github.com/KaramelBytes/autolysis-cli/internal/chart"
	"github.com/KaramelBytes/autolysis-cli/internal/utils"
	"github.com/rotisserie/eris"
)

// Narrative defaults.
const (
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.7
)

const truncatedMarker = "\n\n[analysis truncated to fit the prompt budget]\n"

// NarrativeRequest describes one narrative call.
type NarrativeRequest struct {
	Result      *analysis.AnalysisResult
	Charts      []chart.Artifact
	Model       string
	MaxTokens   int
	Temperature float64
	// PromptTokenLimit truncates the prompt when > 0.
	PromptTokenLimit int
}

// Narrative is the model's report text plus accounting.
type Narrative struct {
	Text      string
	Model     string
	Usage     Usage
	RequestID string
	CostUSD   float64
	CostKnown bool
}

// BuildPrompt renders the analysis into a single analyst prompt. The correlation
// section appears only when a matrix was computed and the outlier note only when
// outliers were found.
func BuildPrompt(res *analysis.AnalysisResult, charts []chart.Artifact) string {
	var b strings.Builder
	b.WriteString("You are an expert data analyst. Based on the following dataset analysis, ")
	b.WriteString("generate a comprehensive report with insights and implications.\n\n")

	b.WriteString("### Dataset Structure\n")
	fmt.Fprintf(&b, "- Name: %s\n", res.Name)
	fmt.Fprintf(&b, "- Shape: (%d, %d)\n", res.Shape.Rows, res.Shape.Columns)
	fmt.Fprintf(&b, "- Columns:\n%s\n", indentJSON(res.Columns))
	fmt.Fprintf(&b, "- Missing Values:\n%s\n\n", indentJSON(res.Missing))

	b.WriteString("### Summary Statistics\n")
	b.WriteString(indentJSON(res.Summary))
	b.WriteString("\n")

	if res.Correlation != nil {
		b.WriteString("\n### Correlation Matrix\n")
		b.WriteString(indentJSON(res.Correlation))
		b.WriteString("\n")
	}
	if res.HasOutliers() {
		fmt.Fprintf(&b, "\n### Detected Outliers\n%d rows contain values outside the IQR fences and may be outliers.\n", len(*res.Outliers))
	}
	if len(charts) > 0 {
		b.WriteString("\n### Visualizations\n")
		for _, c := range charts {
			fmt.Fprintf(&b, "- %s (%s)\n", c.Name(), c.Kind)
		}
	}
	b.WriteString("\nUse the provided visualizations to enhance your explanations. ")
	b.WriteString("Structure the report with markdown headings for clarity.")
	return b.String()
}

// Narrate asks rt for a narrative of the analysis and returns the trimmed text.
func Narrate(ctx context.Context, rt Runtime, req NarrativeRequest) (*Narrative, error) {
	if req.Result == nil {
		return nil, errors.New("narrative: analysis result is required")
	}
	model := req.Model
	if model == "" {
		model = DefaultModel(ProviderOpenRouter)
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temp := req.Temperature
	if temp <= 0 {
		temp = DefaultTemperature
	}

	prompt := BuildPrompt(req.Result, req.Charts)
	if req.PromptTokenLimit > 0 && utils.CountTokens(prompt) > req.PromptTokenLimit {
		prompt = utils.TruncateToTokenLimit(prompt, req.PromptTokenLimit, truncatedMarker)
	}

	resp, err := rt.Generate(ctx, GenerateRequest{
		Model:       model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temp,
	})
	if err != nil {
		return nil, eris.Wrap(err, "narrative: generate")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("narrative: response has no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, errors.New("narrative: response is empty")
	}
	n := &Narrative{Text: text, Model: model, Usage: resp.Usage, RequestID: resp.RequestID}
	n.CostUSD, n.CostKnown = EstimateCostUSD(model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return n, nil
}

func indentJSON(v any) string {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return fmt.Sprintf("(unavailable: %v)", err)
	}
	return string(b)
}
