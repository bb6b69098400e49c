package model

import "time"

// DayKey formats t as the canonical per-day key "YYYY-MM-DD" in t's location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ClockKey formats t as "HH:MM".
func ClockKey(t time.Time) string {
	return t.Format("15:04")
}

// MonthKey formats t as the canonical per-month key "YYYY-MM".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// MonthOfDay extracts the month key from a day key ("2026-02-14" -> "2026-02").
func MonthOfDay(dayKey string) string {
	if len(dayKey) < 7 {
		return ""
	}
	return dayKey[:7]
}

// MonthsInRange returns the month keys of every month intersecting
// [start, end], in chronological order. An inverted range yields nil.
func MonthsInRange(start, end time.Time) []string {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil
	}

	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	var out []string
	for !cur.After(end) {
		out = append(out, MonthKey(cur))
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// ParseDayTime combines a "YYYY-MM-DD" date and "HH:MM" time into a local
// instant, the way remote tasks address their shift start.
func ParseDayTime(dateStr, timeStr string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, time.Local)
}
