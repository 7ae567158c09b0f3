package engine

import "testing"

func TestEvaluateCondition(t *testing.T) {
	flags := NewFlagSet([]string{"packed", "ticket_bought"})

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"empty means ungated", "", true},
		{"blank means ungated", "   ", true},
		{"present flag", "packed", true},
		{"absent flag", "visa_granted", false},
		{"whitespace around token", "  ticket_bought  ", true},
		{"case sensitive", "Packed", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateCondition(tt.expr, flags); got != tt.want {
				t.Errorf("EvaluateCondition(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestConditionsMonotonicUnderFlagGrowth(t *testing.T) {
	// Flags are append-only, so a condition that holds keeps holding as
	// the set grows.
	flags := NewFlagSet(nil)
	exprs := []string{"a", "b", "c"}
	var satisfied []string

	for _, add := range []string{"a", "b", "c"} {
		flags.Add(add)
		for _, e := range exprs {
			if EvaluateCondition(e, flags) {
				satisfied = appendUnique(satisfied, e)
			}
		}
		for _, e := range satisfied {
			if !EvaluateCondition(e, flags) {
				t.Fatalf("condition %q regressed after adding %q", e, add)
			}
		}
	}
}

func appendUnique(s []string, v string) []string {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

func TestFlagSetAdd(t *testing.T) {
	fs := NewFlagSet(nil)
	if !fs.Add("packed") {
		t.Error("first Add returned false")
	}
	if fs.Add("packed") {
		t.Error("repeated Add returned true")
	}
	if !fs.Has("packed") {
		t.Error("flag missing after Add")
	}
}

func TestFlagSetSortedAndClone(t *testing.T) {
	fs := NewFlagSet([]string{"c", "a", "b"})
	got := fs.Sorted()
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sorted() = %v, want %v", got, want)
		}
	}

	clone := fs.clone()
	clone.Add("d")
	if fs.Has("d") {
		t.Error("mutating a clone leaked into the original")
	}
}
