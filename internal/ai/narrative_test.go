package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/autolysis-cli/internal/analysis"
	"github.com/KaramelBytes/autolysis-cli/internal/chart"
	"github.com/KaramelBytes/autolysis-cli/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRuntime struct {
	got  GenerateRequest
	resp *GenerateResponse
	err  error
}

func (f *fakeRuntime) Generate(_ context.Context, req GenerateRequest) (*GenerateResponse, error) {
	f.got = req
	return f.resp, f.err
}

func profile(t *testing.T, cols ...*table.Column) *analysis.AnalysisResult {
	t.Helper()
	tbl, err := table.New("data.csv", cols...)
	require.NoError(t, err)
	opt := analysis.DefaultOptions()
	opt.Logger = zap.NewNop()
	res, err := analysis.Analyze(tbl, opt)
	require.NoError(t, err)
	return res
}

func TestBuildPromptSections(t *testing.T) {
	res := profile(t,
		table.NumericColumn("a", []float64{1, 2, 3, 4, 100}),
		table.NumericColumn("b", []float64{2, 4, 6, 8, 10}),
	)
	charts := []chart.Artifact{{Kind: chart.KindDistribution, Column: "a", Path: "/out/a_distribution.png"}}
	p := BuildPrompt(res, charts)

	for _, want := range []string{
		"You are an expert data analyst",
		"- Shape: (5, 2)",
		"### Summary Statistics",
		"### Correlation Matrix",
		"### Detected Outliers",
		"a_distribution.png",
		"markdown headings",
	} {
		assert.Contains(t, p, want)
	}
}

func TestBuildPromptOmitsOptionalSections(t *testing.T) {
	res := profile(t, table.TextColumn("name", []string{"x", "y"}))
	p := BuildPrompt(res, nil)
	assert.NotContains(t, p, "### Correlation Matrix")
	assert.NotContains(t, p, "### Detected Outliers")
	assert.NotContains(t, p, "### Visualizations")

	res = profile(t, table.NumericColumn("a", []float64{1, 2, 3}))
	p = BuildPrompt(res, nil)
	assert.Contains(t, p, "### Correlation Matrix")
	assert.NotContains(t, p, "### Detected Outliers")
}

func TestNarrateDefaultsAndTrim(t *testing.T) {
	rt := &fakeRuntime{resp: &GenerateResponse{
		Choices: []Choice{{Message: Message{Content: "  ## Findings\nAll good.\n "}}},
		Usage:   Usage{PromptTokens: 1000, CompletionTokens: 100},
	}}
	n, err := Narrate(context.Background(), rt, NarrativeRequest{Result: profile(t, table.NumericColumn("a", []float64{1, 2}))})
	require.NoError(t, err)
	assert.Equal(t, "## Findings\nAll good.", n.Text)
	assert.Equal(t, "openai/gpt-4o-mini", rt.got.Model)
	assert.Equal(t, DefaultMaxTokens, rt.got.MaxTokens)
	assert.Equal(t, DefaultTemperature, rt.got.Temperature)
	require.Len(t, rt.got.Messages, 1)
	assert.Equal(t, "user", rt.got.Messages[0].Role)
	assert.True(t, n.CostKnown)
	assert.Greater(t, n.CostUSD, 0.0)
}

func TestNarrateTruncatesPrompt(t *testing.T) {
	rt := &fakeRuntime{resp: &GenerateResponse{Choices: []Choice{{Message: Message{Content: "ok"}}}}}
	res := profile(t,
		table.NumericColumn("alpha", []float64{1, 2, 3}),
		table.NumericColumn("beta", []float64{3, 1, 2}),
	)
	_, err := Narrate(context.Background(), rt, NarrativeRequest{Result: res, PromptTokenLimit: 50})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(rt.got.Messages[0].Content, truncatedMarker))
	assert.LessOrEqual(t, len([]rune(rt.got.Messages[0].Content)), 200)
}

func TestNarrateFailures(t *testing.T) {
	res := profile(t, table.NumericColumn("a", []float64{1, 2}))

	_, err := Narrate(context.Background(), &fakeRuntime{resp: &GenerateResponse{}}, NarrativeRequest{Result: res})
	assert.ErrorContains(t, err, "no choices")

	_, err = Narrate(context.Background(), &fakeRuntime{resp: &GenerateResponse{Choices: []Choice{{}}}}, NarrativeRequest{Result: res})
	assert.ErrorContains(t, err, "empty")

	auth := &AuthError{APIError: &APIError{StatusCode: 401}}
	_, err = Narrate(context.Background(), &fakeRuntime{err: auth}, NarrativeRequest{Result: res})
	var target *AuthError
	assert.True(t, errors.As(err, &target))

	_, err = Narrate(context.Background(), &fakeRuntime{}, NarrativeRequest{})
	assert.Error(t, err)
}
