package model

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMonthsInRange(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  []string
	}{
		{
			name:  "single month",
			start: time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
			want:  []string{"2026-09"},
		},
		{
			name:  "across year boundary",
			start: time.Date(2026, 11, 15, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC),
			want:  []string{"2026-11", "2026-12", "2027-01"},
		},
		{
			name:  "end on first of month",
			start: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			want:  []string{"2026-09", "2026-10"},
		},
		{
			name:  "inverted range",
			start: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			want:  nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MonthsInRange(tc.start, tc.end)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("MonthsInRange mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 9, 8, 23, 59, 0, 0, time.Local)
	b := time.Date(2026, 9, 8, 0, 1, 0, 0, time.Local)
	c := time.Date(2026, 9, 9, 0, 1, 0, 0, time.Local)

	if !SameDay(a, b) {
		t.Error("expected same day for two instants on 2026-09-08")
	}
	if SameDay(a, c) {
		t.Error("expected different days for 2026-09-08 and 2026-09-09")
	}
}

func TestMonthOfDay(t *testing.T) {
	if got := MonthOfDay("2026-02-14"); got != "2026-02" {
		t.Errorf("MonthOfDay = %q, want %q", got, "2026-02")
	}
	if got := MonthOfDay("short"); got != "" {
		t.Errorf("MonthOfDay on malformed key = %q, want empty", got)
	}
}

func TestParseDayTime(t *testing.T) {
	got, err := ParseDayTime("2026-09-08", "18:00")
	if err != nil {
		t.Fatalf("ParseDayTime: %v", err)
	}
	want := time.Date(2026, 9, 8, 18, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("ParseDayTime = %v, want %v", got, want)
	}

	if _, err := ParseDayTime("2026-09-08", "half zeven"); err == nil {
		t.Error("expected error for malformed time")
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		full  string
		first string
		last  string
	}{
		{"Jan Peeters", "Jan", "Peeters"},
		{"An van den Berg", "An", "van den Berg"},
		{"Cher", "Cher", ""},
		{"  Jan Peeters  ", "Jan", "Peeters"},
	}
	for _, tc := range tests {
		first, last := SplitName(tc.full)
		if first != tc.first || last != tc.last {
			t.Errorf("SplitName(%q) = (%q, %q), want (%q, %q)",
				tc.full, first, last, tc.first, tc.last)
		}
	}
}
