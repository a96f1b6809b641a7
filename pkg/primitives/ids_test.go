package primitives

import (
	"testing"
)

func TestIDStrings(t *testing.T) {
	if got := FileID(12345).String(); got != "FileID(12345)" {
		t.Errorf("expected 'FileID(12345)', got '%s'", got)
	}
	if got := FileID(7).AsTableID().String(); got != "TableID(7)" {
		t.Errorf("expected 'TableID(7)', got '%s'", got)
	}
}

func TestPageID_ComparableKey(t *testing.T) {
	a := NewPageID(7, 3)
	b := NewPageID(7, 3)
	c := NewPageID(7, 4)

	m := map[PageID]int{a: 1}
	if m[b] != 1 {
		t.Errorf("equal page ids must address the same map entry")
	}
	if a.Equals(c) {
		t.Errorf("page ids with different page numbers must differ")
	}
	if a.HashCode() != b.HashCode() {
		t.Errorf("equal page ids must hash equally")
	}
	if len(a.Serialize()) != 16 {
		t.Errorf("expected 16 serialized bytes, got %d", len(a.Serialize()))
	}
}

func TestParsePredicate(t *testing.T) {
	tests := []struct {
		in   string
		want Predicate
	}{
		{"=", Equals},
		{"<", LessThan},
		{">", GreaterThan},
		{"<=", LessThanOrEqual},
		{">=", GreaterThanOrEqual},
		{"!=", NotEqual},
		{"<>", NotEqual},
		{"LIKE", Like},
	}

	for _, tt := range tests {
		got, err := ParsePredicate(tt.in)
		if err != nil {
			t.Fatalf("ParsePredicate(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePredicate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParsePredicate("~"); err == nil {
		t.Errorf("expected error for unknown operator")
	}
}
