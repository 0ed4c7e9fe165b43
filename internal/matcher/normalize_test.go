package matcher

import (
	"testing"
)

func TestNormalizeDescription(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"  Coffee   SHOP  ", "coffee shop"},
		{"STARBUCKS  #123!", "starbucks 123"},
		{"AMAZON.COM*ORDER", "amazoncomorder"},
		{"Grocery Store", "grocery store"},
		{"!!!", ""},
		{"", ""},
		{"a\tb\nc", "a b c"},
		{"CAFÉ #42", "café 42"},
	}

	for _, tc := range cases {
		if got := NormalizeDescription(tc.input); got != tc.expected {
			t.Errorf("NormalizeDescription(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
		{"café", "cafe", 1},
	}

	for _, tc := range cases {
		if got := EditDistance(tc.a, tc.b); got != tc.expected {
			t.Errorf("EditDistance(%q, %q) = %d, expected %d", tc.a, tc.b, got, tc.expected)
		}

		// Distance is symmetric
		if got := EditDistance(tc.b, tc.a); got != tc.expected {
			t.Errorf("EditDistance(%q, %q) = %d, expected %d", tc.b, tc.a, got, tc.expected)
		}
	}
}

func TestDescriptionSimilarity(t *testing.T) {
	cases := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"both empty", "", "", 0.0},
		{"one empty", "", "coffee", 0.0},
		{"identical", "coffee shop", "coffee shop", 1.0},
		{"substring", "coffee", "coffee shop", 0.8},
		{"containment reversed", "grocery store 123", "grocery store", 0.8},
		{"single edit", "abcd", "abxd", 0.75},
		{"unrelated", "abcdef", "uvwxyz", 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := descriptionSimilarity(tc.a, tc.b); got != tc.expected {
				t.Errorf("descriptionSimilarity(%q, %q) = %f, expected %f", tc.a, tc.b, got, tc.expected)
			}
		})
	}
}
