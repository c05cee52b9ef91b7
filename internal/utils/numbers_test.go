package utils

import (
	"math"
	"testing"
)

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		{"", 10, 10},
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		{"x", 5, 5},
		{" 42", 7, 7},
		{"999999999999999999999999", -1, -1},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-4, 0, 30); got != 0 {
		t.Fatalf("Clamp low = %d", got)
	}
	if got := Clamp(45, 0, 30); got != 30 {
		t.Fatalf("Clamp high = %d", got)
	}
	if got := Clamp(12.5, 0, 100); got != 12.5 {
		t.Fatalf("Clamp in range = %v", got)
	}
}

func TestRoundScore(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{72.4, 72},
		{72.5, 73},
		{-3, 0},
		{140, 100},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tc := range cases {
		if got := RoundScore(tc.in, 0, 100); got != tc.want {
			t.Fatalf("RoundScore(%v) = %d; want %d", tc.in, got, tc.want)
		}
	}
}
