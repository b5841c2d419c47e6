package dart

import (
	"testing"
	"time"
)

func TestResolveRange_Default(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	dr, err := ResolveRange("", "", now)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}
	if !dr.End.Equal(now) {
		t.Fatalf("end should be now, got %v", dr.End)
	}
	if got := now.Sub(dr.Start); got != 90*24*time.Hour {
		t.Fatalf("expected 90-day lookback, got %v", got)
	}
}

func TestResolveRange_Manual(t *testing.T) {
	t.Parallel()

	dr, err := ResolveRange("20240101", "20240331", time.Now())
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}
	if dr.Start.Format("20060102") != "20240101" || dr.End.Format("20060102") != "20240331" {
		t.Fatalf("unexpected range: %+v", dr)
	}
}

func TestResolveRange_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		start, end string
	}{
		{"only start", "20240101", ""},
		{"only end", "", "20240331"},
		{"reversed", "20240331", "20240101"},
		{"too long", "20200101", "20230101"},
		{"bad format", "2024-01-01", "20240331"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ResolveRange(tc.start, tc.end, time.Now()); err == nil {
				t.Fatalf("expected error for %s/%s", tc.start, tc.end)
			}
		})
	}
}
