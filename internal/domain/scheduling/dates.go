package scheduling

import (
	"strconv"
	"strings"
	"time"
)

// isoDateLayout is the strict layout for hyphenated raw dates.
const isoDateLayout = "2006-01-02"

var monthsByName = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// NormalizeDate resolves a raw appointment date string to a date-only value
// at midnight in referenceNow's location. ok is false when the string cannot
// be interpreted; unparseable dates are never an error, they are simply
// excluded from windows and buckets.
//
// Two families are understood:
//
//   - hyphenated strings are parsed strictly as ISO year-month-day; the
//     result does not depend on referenceNow, and calendar-invalid dates
//     ("2025-02-30") are unparseable;
//   - everything else is read as ordinal natural language ("14th Oct",
//     "Oct 14 2025"): a day token with an optional st/nd/rd/th suffix, a
//     month-name token, and an optional 4-digit year token, in any order.
//
// When the ordinal form has no year token, referenceNow's year is assumed and
// then adjusted: a candidate more than six months in the past is moved one
// year forward, so a date string read late in the year ("14th Jan" seen in
// November) lands on the upcoming occurrence rather than last winter's.
func NormalizeDate(raw string, referenceNow time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if strings.Contains(raw, "-") {
		t, err := time.ParseInLocation(isoDateLayout, raw, referenceNow.Location())
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	return normalizeOrdinal(raw, referenceNow)
}

func normalizeOrdinal(raw string, referenceNow time.Time) (time.Time, bool) {
	var (
		day, year int
		month     time.Month
		haveDay   bool
		haveMonth bool
		haveYear  bool
	)

	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ',' || r == '.'
	})
	for _, tok := range tokens {
		lower := strings.ToLower(tok)

		if m, ok := monthsByName[lower]; ok {
			if haveMonth {
				return time.Time{}, false
			}
			month = m
			haveMonth = true
			continue
		}

		digits := stripOrdinalSuffix(lower)
		n, err := strconv.Atoi(digits)
		if err != nil {
			return time.Time{}, false
		}
		if len(digits) == 4 {
			if haveYear {
				return time.Time{}, false
			}
			year = n
			haveYear = true
			continue
		}
		if haveDay {
			return time.Time{}, false
		}
		day = n
		haveDay = true
	}

	if !haveDay || !haveMonth || day < 1 || day > 31 {
		return time.Time{}, false
	}

	loc := referenceNow.Location()
	if haveYear {
		return calendarDate(year, month, day, loc)
	}

	candidate, ok := calendarDate(referenceNow.Year(), month, day, loc)
	if !ok {
		return time.Time{}, false
	}
	cutoff := startOfDay(referenceNow).AddDate(0, -6, 0)
	if candidate.Before(cutoff) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate, true
}

// calendarDate builds the date and rejects day-of-month overflow, which
// time.Date would otherwise normalize away (Feb 30 -> Mar 2).
func calendarDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// stripOrdinalSuffix removes a trailing st/nd/rd/th from a day token.
func stripOrdinalSuffix(tok string) string {
	for _, suffix := range [...]string{"st", "nd", "rd", "th"} {
		if trimmed, ok := strings.CutSuffix(tok, suffix); ok && trimmed != "" {
			return trimmed
		}
	}
	return tok
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
