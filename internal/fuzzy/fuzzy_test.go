package fuzzy

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 100},
		{"abc", "", 0},
		{"abcd", "abcd", 100},
		{"ABCD", "abcd", 100},
		{"abcd", "bcde", 75},
		{"abcd", "wxyz", 0},
		// 2*3/(4+4)
		{"abcd", "abce", 75},
		// Matching blocks "a" and "c": 2*2/(3+3).
		{"abc", "axc", 66},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := Ratio(tt.a, tt.b); got != tt.want {
				t.Errorf("Ratio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "anything", 0},
		{"immune", "Immune Boost", 100},
		{"Immune Boost", "immune", 100},
		{"eye", "Eye Defense", 100},
		{"qqq", "Eye Defense", 0},
		// Best window "def" against "dex": 2*2/6.
		{"dex", "Eye Defense", 66},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := PartialRatio(tt.a, tt.b); got != tt.want {
				t.Errorf("PartialRatio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	choices := []string{"Adrenal Support", "Eye Defense", "Immune Boost", "Eye Care"}
	got := Extract("eye", choices, 2)
	want := []Match{{"Eye Defense", 100}, {"Eye Care", 100}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
	if got := Extract("eye", nil, 5); got != nil {
		t.Errorf("Extract(nil) = %v, want nil", got)
	}
}

func TestRatioLongInput(t *testing.T) {
	// Long inputs drop popular elements as anchors but still extend through them.
	a := strings.Repeat("ab", 150)
	if got := Ratio(a, a); got != 100 {
		t.Errorf("Ratio(a, a) = %d, want 100", got)
	}
}
