package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseDateStrict(t *testing.T) {
	got, err := ParseDate("2026-01-10")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v", got)
	}

	for _, bad := range []string{"01/10/2026", "2026-1-10", "2026-01-10T00:00:00Z", ""} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestDayStart(t *testing.T) {
	got := DayStart(time.Date(2026, 1, 10, 23, 59, 59, 1, time.UTC))
	want := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v", got)
	}
}

func TestWeekStartMonday(t *testing.T) {
	// Jan 7 2026 is a Wednesday; its ISO week starts Monday Jan 5.
	got := WeekStart(time.Date(2026, 1, 7, 15, 0, 0, 0, time.UTC))
	want := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v", got)
	}

	// Sunday belongs to the week that started the previous Monday.
	got = WeekStart(time.Date(2026, 1, 11, 3, 0, 0, 0, time.UTC))
	if !got.Equal(want) {
		t.Fatalf("sunday got %v", got)
	}
}

func TestISOWeekLabel(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), "2026-w02"},
		{time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), "2026-w01"},
		// Dec 29 2025 falls in ISO year 2026.
		{time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC), "2026-w01"},
		{time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), "2026-w27"},
	}
	for _, tc := range cases {
		if got := ISOWeekLabel(tc.in); got != tc.want {
			t.Fatalf("%v: got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{66.666666, 66.67},
		{33.333333, 33.33},
		{0.105, 0.11},
		{-0.105, -0.11},
		{0, 0},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Fatalf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
