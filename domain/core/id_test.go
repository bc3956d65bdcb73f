package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseAnalysisID tests analysis ID parsing
func TestParseAnalysisID(t *testing.T) {
	generated := NewAnalysisID()

	tests := []struct {
		input    string
		expected AnalysisID
		hasError bool
	}{
		{generated.String(), generated, false},
		{"  " + generated.String() + " ", generated, false},
		{"", "", true},
		{"   ", "", true},
		{"not-a-uuid", "", true},
	}

	for _, test := range tests {
		result, err := ParseAnalysisID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestMatrixFingerprint(t *testing.T) {
	a := [][]float64{{0.9, 0.1}, {0.2, 0.8}}
	b := [][]float64{{0.9, 0.1}, {0.2, 0.8}}
	c := [][]float64{{0.9, 0.1, 0.2, 0.8}}

	if MatrixFingerprint(a) != MatrixFingerprint(b) {
		t.Error("Expected identical matrices to share a fingerprint")
	}
	if MatrixFingerprint(a) == MatrixFingerprint(c) {
		t.Error("Expected the shape to be part of the fingerprint")
	}
	if got := MatrixFingerprint(a).Short(); len(got) != 12 {
		t.Errorf("Expected 12-char short hash, got %q", got)
	}
}
