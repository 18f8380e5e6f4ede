package normalization

import (
	"strconv"
	"strings"
	"time"
)

const isoDateLayout = "2006-01-02"

// dateStrategy reports a calendar date for s, or false when it does not apply.
type dateStrategy func(s string, today time.Time) (time.Time, bool)

// Tried in order; the first match wins.
var deadlineStrategies = []dateStrategy{
	parseISODate,
	parseNumericDate,
	parseTextualDate,
}

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// Today truncates now to midnight of its calendar day, keeping the location.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// NormalizeDeadline turns a loosely formatted deadline into a calendar date.
// Day/month order is always day first. Anything unparsable yields false; it never fails.
func NormalizeDeadline(raw string, today time.Time) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	today = Today(today)
	for _, try := range deadlineStrategies {
		if d, ok := try(s, today); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

// NormalizeDeadlines aligns raws with n subjects. Nil, missing and unparsable
// entries come back as nil.
func NormalizeDeadlines(raws []*string, n int, today time.Time) []*time.Time {
	out := make([]*time.Time, n)
	for i := 0; i < n && i < len(raws); i++ {
		if d, ok := NormalizeDeadline(ParseInputStringPtr(raws[i]), today); ok {
			out[i] = &d
		}
	}
	return out
}

func parseISODate(s string, today time.Time) (time.Time, bool) {
	d, err := time.ParseInLocation(isoDateLayout, s, today.Location())
	if err != nil {
		return time.Time{}, false
	}
	return calendarDate(d.Year(), int(d.Month()), d.Day(), today.Location())
}

func parseNumericDate(s string, today time.Time) (time.Time, bool) {
	parts := strings.Split(strings.ReplaceAll(s, "-", "/"), "/")
	if len(parts) != 2 && len(parts) != 3 {
		return time.Time{}, false
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}

	if len(nums) == 2 {
		return upcoming(nums[0], nums[1], today)
	}
	year := nums[2]
	if year < 100 {
		year += 2000
	}
	return calendarDate(year, nums[1], nums[0], today.Location())
}

// parseTextualDate handles "5 Nov", "05 November" and either form followed by a 4-digit year.
func parseTextualDate(s string, today time.Time) (time.Time, bool) {
	fields := strings.Fields(s)
	if len(fields) != 2 && len(fields) != 3 {
		return time.Time{}, false
	}
	day, ok := digits(fields[0], 1, 2)
	if !ok {
		return time.Time{}, false
	}
	month, ok := monthNames[ParseInputString(fields[1])]
	if !ok {
		return time.Time{}, false
	}
	if len(fields) == 2 {
		return upcoming(day, int(month), today)
	}
	year, ok := digits(fields[2], 4, 4)
	if !ok {
		return time.Time{}, false
	}
	return calendarDate(year, int(month), day, today.Location())
}

// upcoming places day/month in today's year, or the next one if that date has passed.
func upcoming(day, month int, today time.Time) (time.Time, bool) {
	d, ok := calendarDate(today.Year(), month, day, today.Location())
	if !ok {
		return time.Time{}, false
	}
	if d.Before(today) {
		return calendarDate(today.Year()+1, month, day, today.Location())
	}
	return d, true
}

// calendarDate rejects values time.Date would silently normalise (31 April, 29 Feb 2025).
func calendarDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, false
	}
	return d, true
}

func digits(s string, minLen, maxLen int) (int, bool) {
	if len(s) < minLen || len(s) > maxLen {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
