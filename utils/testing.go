package utils

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Test helpers. All of them report through t.Errorf so a test keeps going
// after the first failed assertion.

func Assert(t testing.TB, predicate bool, msg string) {
	t.Helper()
	if !predicate {
		t.Error(msg)
	}
}

func AssertEqual[T comparable](t testing.TB, a T, b T) {
	t.Helper()
	if a != b {
		t.Errorf("Expected %v == %v (%T)", a, b, a)
	}
}

func AssertNotEqual[T comparable](t testing.TB, a T, b T) {
	t.Helper()
	if a == b {
		t.Errorf("Expected %v != %v (%T)", a, b, a)
	}
}

// Assert that error is nil
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("Expected no error, got '%v'", err)
	}
}

// Assert that an error is not nil
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Errorf("Expected error, got '%v'", err)
	}
}

// Assert that err matches target in the sense of errors.Is
func AssertErrorIs(t testing.TB, err error, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("Expected error matching '%v', got '%v'", target, err)
	}
}

func CompareArrays[T comparable](a []T, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Compare two slices element by element, reporting a diff when they differ.
func AssertEqualArrays[T comparable](t testing.TB, a []T, b []T) {
	t.Helper()
	if !CompareArrays(a, b) {
		t.Errorf("Arrays differ (-want +got):\n%s", cmp.Diff(a, b))
	}
}
