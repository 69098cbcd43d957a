package parsing

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	fullDatePattern  = regexp.MustCompile(`(\d{4})\s*[.\-/년]\s*(\d{1,2})\s*[.\-/월]\s*(\d{1,2})`)
	shortDatePattern = regexp.MustCompile(`(\d{1,2})\s*[/.월]\s*(\d{1,2})`)
	dDayPattern      = regexp.MustCompile(`(?i)d\s*-\s*(\d{1,3})`)
	unixPattern      = regexp.MustCompile(`^\d{9,11}$`)
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05-0700",
	time.RFC1123Z,
	time.RFC1123,
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
}

var openEndedDeadlines = []string{"상시", "수시", "채용시", "채용 시", "until filled", "ongoing", "open until", "rolling"}

// ParseDate understands absolute dates, unix seconds and board shorthand such
// as "~10/31(목)" or "D-7". ref anchors year-less and relative dates.
func ParseDate(text string, ref time.Time) *time.Time {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || containsAny(trimmed, openEndedDeadlines...) {
		return nil
	}

	if unixPattern.MatchString(trimmed) {
		seconds, err := strconv.ParseInt(trimmed, 10, 64)
		if err == nil {
			t := time.Unix(seconds, 0).UTC()
			return &t
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			t = t.UTC()
			return &t
		}
	}

	if m := fullDatePattern.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return dateOf(year, month, day, ref.Location())
	}

	switch {
	case strings.Contains(trimmed, "오늘"):
		return dateOf(ref.Year(), int(ref.Month()), ref.Day(), ref.Location())
	case strings.Contains(trimmed, "내일"):
		next := ref.AddDate(0, 0, 1)
		return dateOf(next.Year(), int(next.Month()), next.Day(), ref.Location())
	}

	if m := dDayPattern.FindStringSubmatch(trimmed); m != nil {
		days, _ := strconv.Atoi(m[1])
		due := ref.AddDate(0, 0, days)
		return dateOf(due.Year(), int(due.Month()), due.Day(), ref.Location())
	}

	if m := shortDatePattern.FindStringSubmatch(trimmed); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		t := dateOf(ref.Year(), month, day, ref.Location())
		if t != nil && t.Before(ref.AddDate(0, -6, 0)) {
			t = dateOf(ref.Year()+1, month, day, ref.Location())
		}
		return t
	}

	return nil
}

func dateOf(year, month, day int, loc *time.Location) *time.Time {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day {
		return nil
	}
	return &t
}
