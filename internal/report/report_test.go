package report

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomarkov/internal"
	"gomarkov/internal/analysis"
	"gomarkov/internal/markov"
	"gomarkov/internal/testkit"
)

func sampleAnalysis(t *testing.T) *analysis.FullAnalysis {
	t.Helper()
	engine := analysis.NewEngine(analysis.DefaultOptions(), internal.NewLoggerWithWriter(internal.LogLevelError, io.Discard), nil)
	full, err := engine.Analyze(context.Background(), testkit.SampleObservations())
	require.NoError(t, err)
	return full
}

func TestMarkdown(t *testing.T) {
	full := sampleAnalysis(t)
	md := Markdown(full)

	assert.Contains(t, md, full.ID.String())
	assert.Contains(t, md, "| **Sano** | 0.0200 | 0.0800 | 0.9000 |")
	assert.Contains(t, md, "| Incobrable | absorbing | | |")
	assert.Contains(t, md, "| Ergodic | no |")
	assert.Contains(t, md, "| Determinant | 0.622000 |")
	assert.NotContains(t, md, "Unavailable sections")
}

func TestMarkdown_ReportsFailedSections(t *testing.T) {
	full := sampleAnalysis(t)
	full.Errors = map[string]string{analysis.SectionClassification: "boom"}
	full.Classification = nil

	md := Markdown(full)
	assert.Contains(t, md, "## Unavailable sections")
	assert.Contains(t, md, "`classification`: boom")
	assert.NotContains(t, md, "## State classification")
}

func TestHTML(t *testing.T) {
	page := string(HTML(sampleAnalysis(t)))

	assert.True(t, strings.Contains(page, "<html"), "complete page expected")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<h2")
	assert.Contains(t, page, "Stationary distribution")
}

func TestReport_EscapesStateLabels(t *testing.T) {
	engine := analysis.NewEngine(analysis.DefaultOptions(), internal.NewLoggerWithWriter(internal.LogLevelError, io.Discard), nil)
	obs, err := markov.ObservationsFromPairs([][]string{
		{"<img src=x onerror=alert(1)>", "A|B"},
		{"A|B", "<script>alert(1)</script>"},
		{"<script>alert(1)</script>", "<script>alert(1)</script>"},
	})
	require.NoError(t, err)
	full, err := engine.Analyze(context.Background(), obs)
	require.NoError(t, err)

	md := Markdown(full)
	assert.NotContains(t, md, "<img")
	assert.NotContains(t, md, "<script>")
	assert.Contains(t, md, "| **A\\|B** |")
	// one cell per state plus the row label
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(line, "| **A\\|B** |") {
			assert.Equal(t, 5, strings.Count(line, "|")-strings.Count(line, "\\|"), line)
		}
	}

	page := string(HTML(full))
	assert.NotContains(t, page, "<img")
	assert.NotContains(t, page, "<script>")
	assert.Contains(t, page, "img src=x onerror=alert(1)")
	assert.Contains(t, page, "A|B")
}

func TestLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Sano", "Sano"},
		{"a|b", `a\|b`},
		{"<b>", "&lt;b&gt;"},
		{"x_y*z`", "x\\_y\\*z\\`"},
		{"two\nlines", "two lines"},
		{`back\slash`, `back\\slash`},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, label(tc.in), tc.in)
	}
}
