// Package dateparser turns six-digit MMDDYY tokens found in filenames into
// MM-DD-YYYY dates.
package dateparser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DateParseErrorType represents the type of date parsing error.
type DateParseErrorType string

const (
	InvalidFormat DateParseErrorType = "INVALID_FORMAT"
	InvalidDate   DateParseErrorType = "INVALID_DATE"
)

// ShortDateLen is the length of an MMDDYY token after trimming.
const ShortDateLen = 6

// DateParseError represents an error that occurred during date parsing.
type DateParseError struct {
	Type   DateParseErrorType
	Reason string
}

func (e *DateParseError) Error() string {
	switch e.Type {
	case InvalidFormat:
		if e.Reason != "" {
			return fmt.Sprintf("invalid date format: %s", e.Reason)
		}
		return "invalid date format: expected MMDDYY"
	case InvalidDate:
		return fmt.Sprintf("invalid date: %s", e.Reason)
	default:
		return fmt.Sprintf("date parse error: %s", e.Reason)
	}
}

// ShortDate is a calendar date resolved from a short token.
type ShortDate struct {
	Year  int
	Month int
	Day   int
}

// String formats the date as MM-DD-YYYY.
func (d ShortDate) String() string {
	return fmt.Sprintf("%02d-%02d-%04d", d.Month, d.Day, d.Year)
}

// Before reports whether d is earlier than other.
func (d ShortDate) Before(other ShortDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Pivot returns the last two digits of referenceYear. It is never negative.
func Pivot(referenceYear int) int {
	return ((referenceYear % 100) + 100) % 100
}

// ResolveYear expands a two-digit year. Years strictly greater than the pivot
// land in the 1900s, everything else (including the pivot itself) in the
// 2000s. This is not a sliding 50-year window: with a 2024 reference, "25"
// already means 1925.
func ResolveYear(yy, referenceYear int) int {
	if yy > Pivot(referenceYear) {
		return 1900 + yy
	}
	return 2000 + yy
}

// ParseShortDate interprets token as MMDDYY. Surrounding whitespace is
// ignored. All six characters must be ASCII digits and the resolved date must
// exist on the Gregorian calendar.
func ParseShortDate(token string, referenceYear int) (*ShortDate, error) {
	trimmed := strings.TrimSpace(token)
	if n := utf8.RuneCountInString(trimmed); n != ShortDateLen {
		return nil, &DateParseError{
			Type:   InvalidFormat,
			Reason: fmt.Sprintf("expected %d characters, got %d", ShortDateLen, n),
		}
	}

	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] < '0' || trimmed[i] > '9' {
			return nil, &DateParseError{
				Type:   InvalidFormat,
				Reason: fmt.Sprintf("non-digit character in %q", trimmed),
			}
		}
	}

	month, _ := strconv.Atoi(trimmed[0:2])
	day, _ := strconv.Atoi(trimmed[2:4])
	yy, _ := strconv.Atoi(trimmed[4:6])

	return validate(ResolveYear(yy, referenceYear), month, day)
}

// NormalizeShortDate rewrites a six-character MMDDYY token as MM-DD-YYYY.
// Anything that does not parse, including tokens of the wrong length, is
// returned exactly as given. It never fails.
func NormalizeShortDate(token string, referenceYear int) string {
	d, err := ParseShortDate(token, referenceYear)
	if err != nil {
		return token
	}
	return d.String()
}

// canonicalPattern matches the MM-DD-YYYY output of NormalizeShortDate.
var canonicalPattern = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)

// ParseCanonical parses a cell that already holds an MM-DD-YYYY date.
func ParseCanonical(s string) (*ShortDate, error) {
	matches := canonicalPattern.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return nil, &DateParseError{Type: InvalidFormat, Reason: "expected MM-DD-YYYY"}
	}

	month, _ := strconv.Atoi(matches[1])
	day, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	return validate(year, month, day)
}

func validate(year, month, day int) (*ShortDate, error) {
	if month < 1 || month > 12 {
		return nil, &DateParseError{
			Type:   InvalidDate,
			Reason: fmt.Sprintf("month %02d is out of range (01-12)", month),
		}
	}

	maxDay := daysInMonth(year, month)
	if day < 1 || day > maxDay {
		return nil, &DateParseError{
			Type:   InvalidDate,
			Reason: fmt.Sprintf("day %02d is out of range for month %02d (01-%02d)", day, month, maxDay),
		}
	}

	return &ShortDate{
		Year:  year,
		Month: month,
		Day:   day,
	}, nil
}

// daysInMonth returns the number of days in the given month for the given year.
func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || (year%400 == 0)
}
