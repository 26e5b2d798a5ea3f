package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dayFormat   = "2006-01-02"
	monthFormat = "2006-01"
)

// FormatDay returns a day label like "2024-01-31".
func FormatDay(t time.Time) string {
	return t.Format(dayFormat)
}

// FormatWeek returns an ISO week label like "2024-W05".
func FormatWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// FormatMonth returns a month label like "2024-01".
func FormatMonth(t time.Time) string {
	return t.Format(monthFormat)
}

// ParseWeek parses "2024-W05" into ISO year and week.
func ParseWeek(label string) (year, week int, err error) {
	parts := strings.SplitN(label, "-W", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid week label format: %q", label)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in week label %q: %w", label, err)
	}

	week, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid week in week label %q: %w", label, err)
	}
	if week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("week %d out of range in %q", week, label)
	}

	return year, week, nil
}

// WeekStart returns the Monday that begins the given ISO week.
func WeekStart(year, week int) time.Time {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset)
	return monday.AddDate(0, 0, (week-1)*7)
}
