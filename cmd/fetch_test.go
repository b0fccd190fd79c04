package cmd

import "testing"

func TestPreviousDay(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2026-08-25", "2026-08-24"},
		{"2026-01-01", "2025-12-31"},
		{"2024-03-01", "2024-02-29"},
		{"not-a-date", ""},
	}

	for _, tc := range cases {
		if got := previousDay(tc.date); got != tc.want {
			t.Fatalf("previousDay(%q) = %q, want %q", tc.date, got, tc.want)
		}
	}
}
