package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Year window guard: OCR noise outside this range is discarded rather than
// misread as a date.
const (
	minYear = 2000
	maxYear = 2040
)

// Lexical pattern families that can yield a date candidate.
const (
	patternNumeric      = "numeric-slashed"
	patternDayMonthName = "day-month-name"
	patternMonthNameDay = "month-name-day"
)

// monthNames maps English month names, full and abbreviated forms including
// the irregular "sept", to month numbers.
var monthNames = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

const monthAlternation = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

var (
	// D/M/Y with slash, hyphen or dot separators.
	numericDateRe = regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})`)
	// D Month Y, e.g. "24 Feb 2023" or "24-February-2023".
	dayMonthNameRe = regexp.MustCompile(`(?i)(\d{1,2})[\s\-]+(` + monthAlternation + `)[\s\-,]+(\d{4})`)
	// Month D, Y, e.g. "February 24, 2023".
	monthNameDayRe = regexp.MustCompile(`(?i)(` + monthAlternation + `)\s+(\d{1,2})[\s,]+(\d{4})`)
)

// CandidateDate is a date found in raw text, tagged with the lexical pattern
// that produced it.
type CandidateDate struct {
	Year    int
	Month   int
	Day     int
	Pattern string
}

// Valid reports whether the candidate falls inside the heuristic guard
// window.
func (c CandidateDate) Valid() bool {
	return c.Month >= 1 && c.Month <= 12 &&
		c.Day >= 1 && c.Day <= 31 &&
		c.Year >= minYear && c.Year <= maxYear
}

// ISO renders the candidate as YYYY-MM-DD, so lexical sort order equals
// chronological order.
func (c CandidateDate) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", c.Year, c.Month, c.Day)
}

// FindCandidateDates scans text with all three pattern families and returns
// every in-window candidate, including duplicates across families.
func FindCandidateDates(text string) []CandidateDate {
	var out []CandidateDate

	for _, m := range numericDateRe.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])

		// A "month" above 12 next to a "day" of 12 or less is almost
		// certainly M/D/Y misread as D/M/Y.
		if month > 12 && day <= 12 {
			day, month = month, day
		}

		c := CandidateDate{Year: year, Month: month, Day: day, Pattern: patternNumeric}
		if c.Valid() {
			out = append(out, c)
		}
	}

	for _, m := range dayMonthNameRe.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, ok := lookupMonth(m[2])
		year, _ := strconv.Atoi(m[3])
		if !ok {
			continue
		}
		c := CandidateDate{Year: year, Month: month, Day: day, Pattern: patternDayMonthName}
		if c.Valid() {
			out = append(out, c)
		}
	}

	for _, m := range monthNameDayRe.FindAllStringSubmatch(text, -1) {
		month, ok := lookupMonth(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if !ok {
			continue
		}
		c := CandidateDate{Year: year, Month: month, Day: day, Pattern: patternMonthNameDay}
		if c.Valid() {
			out = append(out, c)
		}
	}

	return out
}

// ExtractDates returns the deduplicated, sorted set of ISO dates found in
// text. A date appearing twice, or under two different patterns, contributes
// once.
func ExtractDates(text string) []string {
	set := make(map[string]struct{})
	for _, c := range FindCandidateDates(text) {
		set[c.ISO()] = struct{}{}
	}

	dates := make([]string, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

func lookupMonth(name string) (int, bool) {
	key := strings.ToLower(name)
	if n, ok := monthNames[key]; ok {
		return n, true
	}
	if len(key) > 3 {
		if n, ok := monthNames[key[:3]]; ok {
			return n, true
		}
	}
	return 0, false
}
