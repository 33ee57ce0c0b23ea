// Package testutil provides shared test infrastructure for the sim packages:
// float assertions and probability-file fixtures.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// AssertFloat64Equal compares two float64 values with a relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// WriteProbabilities writes a probability file ({"k": {"threshold": [p...]}})
// into a fresh temporary directory and returns its path.
func WriteProbabilities(t *testing.T, probs map[string]map[string][]float64) string {
	t.Helper()
	data, err := json.Marshal(probs)
	if err != nil {
		t.Fatalf("encoding probabilities: %v", err)
	}
	path := filepath.Join(t.TempDir(), "probs.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing probabilities: %v", err)
	}
	return path
}

// ReadJSON decodes the JSON file at path into v.
func ReadJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
}
