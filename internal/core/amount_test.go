package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"0.01", "0.01", true},
		{" 2.50 ", "2.5", true},
		{"50000", "50000", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{"1,23", "", false},
		{"1,000", "", false},
		{"1,000.50", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got.String(), err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestAmountValueDegradesToZero(t *testing.T) {
	cases := map[string]string{
		"":      "0",
		"abc":   "0",
		"12.5":  "12.5",
		"12,5":  "0",
		"1,000": "0",
		" 3 ":   "3",
		"1.2.3": "0",
	}
	for in, want := range cases {
		if got := AmountValue(in).String(); got != want {
			t.Errorf("AmountValue(%q) = %s, want %s", in, got, want)
		}
	}
}
