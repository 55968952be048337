package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"100", 100, true},
		{"$100", 100, true},
		{"$1,200.50", 1200.50, true},
		{"1,000,000", 1000000, true},
		{"0.99", 0.99, true},
		{" 250 ", 250, true},
		{"-$25", -25, true},
		{"USD 42.10", 42.10, true},
		{"N/A", 0, false},
		{"", 0, false},
		{"   ", 0, false},
		{"$", 0, false},
		{"1.2.3", 0, false},
		{"..", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error, got %v", tc.in, got)
			}
		}
	}
}
