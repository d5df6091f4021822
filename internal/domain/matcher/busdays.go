package matcher

import "time"

// BusinessDaysApart counts the business days (Mon-Fri) separating two
// dates. Same-day distance is 0; a Wednesday and the following Friday
// are 2 apart. Weekends never contribute to the count. Holidays are not
// modeled.
func BusinessDaysApart(a, b time.Time) int {
	start := dateOnly(a)
	end := dateOnly(b)
	if start.After(end) {
		start, end = end, start
	}

	days := 0
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		if wd := current.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}

	// The start day itself is not distance. Clamp for weekend-only spans.
	if days > 0 {
		days--
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
