package utils

import (
	"testing"
	"time"
	_ "time/tzdata"
)

func TestEndOfDayAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	cases := []struct {
		day      string
		expected string
	}{
		{"2024-03-31", "2024-03-31T23:59:59+01:00"}, // 23h day
		{"2024-10-27", "2024-10-27T23:59:59Z"},      // 25h day
		{"2024-06-15", "2024-06-15T23:59:59+01:00"},
	}
	for _, tc := range cases {
		day, err := time.ParseInLocation("2006-01-02", tc.day, loc)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.day, err)
		}
		if got := EndOfDay(day).Format(time.RFC3339); got != tc.expected {
			t.Fatalf("EndOfDay(%s) expected %s, got %s", tc.day, tc.expected, got)
		}
	}
}

func TestGetMonthRange(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	start, end := GetMonthRange(time.Date(2024, time.March, 14, 12, 0, 0, 0, loc))
	if got := start.Format(time.RFC3339); got != "2024-03-01T00:00:00Z" {
		t.Fatalf("start expected 2024-03-01T00:00:00Z, got %s", got)
	}
	if got := end.Format(time.RFC3339); got != "2024-03-31T23:59:59+01:00" {
		t.Fatalf("end expected 2024-03-31T23:59:59+01:00, got %s", got)
	}
	_, end = GetMonthRange(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	if got := end.Format(time.RFC3339); got != "2024-02-29T23:59:59Z" {
		t.Fatalf("leap end expected 2024-02-29T23:59:59Z, got %s", got)
	}
}
