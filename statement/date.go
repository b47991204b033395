package statement

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var (
	isoDate    = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	dmyDate    = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})$`)
	dmyShort   = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2})$`)
	dayMonName = regexp.MustCompile(`^(\d{1,2})[\s\-]([A-Za-z]{3})[\s\-](\d{4})$`)
)

// parseDate normalizes a raw date field to ISO YYYY-MM-DD. Formats are tried
// in order: ISO, DD/MM/YYYY (also - and . separators), DD/MM/YY (two-digit
// years above 50 are 1900s), and DD Mon YYYY. Returns false when nothing
// matches.
func parseDate(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	if m := isoDate.FindStringSubmatch(trimmed); m != nil {
		return isoString(m[1], m[2], m[3])
	}

	if m := dmyDate.FindStringSubmatch(trimmed); m != nil {
		return isoString(m[3], m[2], m[1])
	}

	if m := dmyShort.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[3])
		if year > 50 {
			year += 1900
		} else {
			year += 2000
		}
		return isoString(strconv.Itoa(year), m[2], m[1])
	}

	if m := dayMonName.FindStringSubmatch(trimmed); m != nil {
		month, ok := monthNames[strings.ToLower(m[2])]
		if !ok {
			return "", false
		}
		return isoString(m[3], strconv.Itoa(month), m[1])
	}

	return "", false
}

func isoString(year, month, day string) (string, bool) {
	m, err := strconv.Atoi(month)
	if err != nil {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s-%02d-%02d", year, m, d), true
}
