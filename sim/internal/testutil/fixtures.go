// Package testutil provides shared test infrastructure for the cohort
// simulator: parameter fixtures and float assertions used across sim/ and
// its sub-packages.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// LoadParamsFixture returns the raw YAML of testdata/params/<name>.yaml.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadParamsFixture(t *testing.T, name string) []byte {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "params", name+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read params fixture %s: %v", name, err)
	}
	return data
}

// FixturePath returns the absolute path of testdata/params/<name>.yaml.
func FixturePath(t *testing.T, name string) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "params", name+".yaml")
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
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
