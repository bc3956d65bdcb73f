package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gomarkov/adapters/excel"
	"gomarkov/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("DATABASE_URL", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func sampleFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, excel.WriteObservations(path, testkit.SampleObservations()))
	return path
}

func TestEstimate(t *testing.T) {
	out, err := execute(t, "estimate", sampleFile(t, "portfolio.csv"))
	require.NoError(t, err)

	var est struct {
		States           []string    `json:"states"`
		TransitionMatrix [][]float64 `json:"transition_matrix"`
		Stats            struct {
			TotalTransitions int `json:"total_transitions"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &est))
	assert.Equal(t, []string{"Incobrable", "Moroso", "Sano"}, est.States)
	assert.Equal(t, 1200, est.Stats.TotalTransitions)
	assert.InDelta(t, 0.9, est.TransitionMatrix[2][2], 1e-12)
}

func TestAnalyze_Formats(t *testing.T) {
	path := sampleFile(t, "portfolio.xlsx")

	out, err := execute(t, "analyze", path)
	require.NoError(t, err)
	var full map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &full))
	assert.Contains(t, full, "analysis_id")
	assert.Contains(t, full, "classification")

	out, err = execute(t, "analyze", path, "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "| Sano")

	htmlPath := filepath.Join(t.TempDir(), "report.html")
	_, err = execute(t, "analyze", path, "--format", "html", "-o", htmlPath)
	require.NoError(t, err)
	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<table>")

	_, err = execute(t, "analyze", path, "--format", "pdf")
	assert.ErrorContains(t, err, "unknown format")
}

func TestAnalyze_MissingFile(t *testing.T) {
	_, err := execute(t, "analyze", filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.ErrorContains(t, err, "not found")
}

func TestStationary(t *testing.T) {
	dir := t.TempDir()
	bare := filepath.Join(dir, "bare.json")
	require.NoError(t, os.WriteFile(bare, []byte(`[[0.5, 0.5], [0.5, 0.5]]`), 0o644))
	named := filepath.Join(dir, "named.json")
	require.NoError(t, os.WriteFile(named, []byte(`{"matriz_transicion": [[1]], "estados": ["A"]}`), 0o644))
	mismatch := filepath.Join(dir, "mismatch.json")
	require.NoError(t, os.WriteFile(mismatch, []byte(`{"matriz_transicion": [[1]], "estados": ["A", "B"]}`), 0o644))

	var res struct {
		Vector    []float64 `json:"vector"`
		Converged bool      `json:"converged"`
		States    []string  `json:"estados"`
	}

	out, err := execute(t, "stationary", bare)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, res.Vector, 1e-12)
	assert.True(t, res.Converged)

	out, err = execute(t, "stationary", named, "--tolerance", "1e-12")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []float64{1}, res.Vector)
	assert.Equal(t, []string{"A"}, res.States)

	_, err = execute(t, "stationary", mismatch)
	assert.Error(t, err)
}

func TestStress(t *testing.T) {
	path := sampleFile(t, "portfolio.csv")

	out, err := execute(t, "stress", path)
	require.NoError(t, err)
	var res struct {
		Factors struct {
			Delinquent    float64 `json:"factor_moroso"`
			Uncollectible float64 `json:"factor_incobrable"`
		} `json:"factors"`
		States []string `json:"estados"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1.2, res.Factors.Delinquent)
	assert.Equal(t, 1.3, res.Factors.Uncollectible)
	assert.Len(t, res.States, 3)

	out, err = execute(t, "stress", path, "--delinquent", "2")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2.0, res.Factors.Delinquent)
	assert.Equal(t, 1.3, res.Factors.Uncollectible)
}

func TestLosses(t *testing.T) {
	path := sampleFile(t, "portfolio.csv")

	out, err := execute(t, "losses", path,
		"--ead", "Sano=1000,Moroso=5000,Incobrable=0",
		"--lgd", "Sano=0,Moroso=0.3,Incobrable=0.5")
	require.NoError(t, err)

	var rep struct {
		TotalLoss    float64 `json:"total_loss"`
		DefaultState string  `json:"default_state"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.InDelta(t, 300.0, rep.TotalLoss, 1e-9)
	assert.Equal(t, "Incobrable", rep.DefaultState)

	_, err = execute(t, "losses", path, "--ead", "Sano=lots", "--lgd", "Sano=0")
	assert.ErrorContains(t, err, "not a number")

	_, err = execute(t, "losses", path, "--ead", "Sano=1")
	assert.Error(t, err)
}

func TestBatch(t *testing.T) {
	good1 := sampleFile(t, "q1.csv")
	good2 := sampleFile(t, "q2.xlsx")
	missing := filepath.Join(t.TempDir(), "q3.csv")

	out, err := execute(t, "batch", good1, good2, missing, "--concurrency", "2")
	assert.ErrorContains(t, err, "1 of 3 files failed")

	var results []batchResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)
	assert.Equal(t, "q1.csv", results[0].File)
	assert.NotNil(t, results[0].Analysis)
	assert.NotNil(t, results[1].Analysis)
	assert.Nil(t, results[2].Analysis)
	assert.NotEmpty(t, results[2].Error)

	_, err = execute(t, "batch", good1, "--concurrency", "0")
	assert.Error(t, err)
}

func TestSample(t *testing.T) {
	out, err := execute(t, "sample")
	require.NoError(t, err)
	var payload testkit.Payload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Len(t, payload.Observations, 1200)
	assert.Equal(t, testkit.SampleStates, payload.States)

	path := filepath.Join(t.TempDir(), "synthetic.csv")
	out, err = execute(t, "sample", "--synthetic", "--obligors", "10", "--periods", "3", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 30 migrations")

	out, err = execute(t, "estimate", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"total_transitions": 30`)
}

func TestDBAnalyze_RequiresDatabase(t *testing.T) {
	_, err := execute(t, "db-analyze", "--portfolio", "retail")
	assert.ErrorContains(t, err, "DATABASE_URL")

	_, err = execute(t, "db-analyze")
	assert.ErrorContains(t, err, "--portfolio")
}

func TestParseDateWindow(t *testing.T) {
	w, err := parseDateWindow("2024-01-01", "2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), w.To)

	w, err = parseDateWindow("", "")
	require.NoError(t, err)
	assert.True(t, w.From.IsZero() && w.To.IsZero())

	_, err = parseDateWindow("2024-02-01", "2024-01-01")
	assert.Error(t, err)
	_, err = parseDateWindow("yesterday", "")
	assert.Error(t, err)
}
