package core

import (
	"testing"
	"time"
)

func TestDateKey(t *testing.T) {
	cases := []struct {
		y, m, d int
		want    string
	}{
		{2024, 3, 15, "2024-03-15"},
		{2024, 12, 1, "2024-12-01"},
		{987, 1, 9, "0987-01-09"},
	}
	for _, tc := range cases {
		if got := DateKey(tc.y, tc.m, tc.d); got != tc.want {
			t.Errorf("DateKey(%d,%d,%d) = %s, want %s", tc.y, tc.m, tc.d, got, tc.want)
		}
	}
}

func TestParseDateKeyRoundTrip(t *testing.T) {
	y, m, d, err := ParseDateKey(DateKey(2024, 2, 29))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if y != 2024 || m != 2 || d != 29 {
		t.Fatalf("got %d-%d-%d", y, m, d)
	}
	if _, _, _, err := ParseDateKey("2023-02-29"); err == nil {
		t.Fatal("expected error for non-existent date")
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct{ y, m, want int }{
		{2024, 2, 29},
		{2023, 2, 28},
		{2024, 4, 30},
		{2024, 12, 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.y, tc.m); got != tc.want {
			t.Errorf("DaysInMonth(%d,%d) = %d, want %d", tc.y, tc.m, got, tc.want)
		}
	}
}

func TestCurrentDateValues(t *testing.T) {
	y, m, d := CurrentDateValues(time.Date(2025, time.July, 4, 23, 59, 0, 0, time.UTC))
	if y != 2025 || m != 7 || d != 4 {
		t.Fatalf("got %d-%d-%d", y, m, d)
	}
}
