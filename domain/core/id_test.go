package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 1000

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

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{"run-123", RunID("run-123"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
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

func TestFingerprintStable(t *testing.T) {
	a := NewFingerprint([]byte("Date,Sales\n2021-01-04,1.0\n"))
	b := NewFingerprint([]byte("Date,Sales\n2021-01-04,1.0\n"))
	c := NewFingerprint([]byte("Date,Sales\n2021-01-04,2.0\n"))

	if !Hash(a).Equals(Hash(b)) {
		t.Errorf("expected equal fingerprints, got %s and %s", a, b)
	}
	if Hash(a).Equals(Hash(c)) {
		t.Errorf("expected different fingerprints for different bytes")
	}
	if len(a.Short()) != 12 {
		t.Errorf("expected 12-char short form, got %q", a.Short())
	}
}
