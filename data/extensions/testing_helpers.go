package extensions

import (
	"math"
	"testing"
)

func AssertAreEqual[T comparable](t *testing.T, name string, expected T, actual T) {
	t.Helper()
	if expected != actual {
		t.Fatalf("%s mismatch, expected %v, got %v", name, expected, actual)
	}
}

func AssertNillability[T comparable](t *testing.T, name string, expectNil bool, actual *T) {
	t.Helper()
	if (actual == nil) != expectNil {
		t.Fatalf("%s nillability mismatch, expected nil=%v, got nil=%v", name, expectNil, actual == nil)
	}
}

// AssertClose compares floats within an absolute tolerance.
func AssertClose(t *testing.T, name string, expected, actual, tolerance float64) {
	t.Helper()
	if math.Abs(expected-actual) > tolerance {
		t.Fatalf("%s mismatch, expected %v, got %v (tolerance %v)", name, expected, actual, tolerance)
	}
}
