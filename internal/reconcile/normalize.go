package reconcile

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// fallbackDateLayouts are tried when the separator heuristic does not apply.
var fallbackDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"20060102",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"Monday, 2 January 2006",
	"Mon 2 Jan 2006",
}

func isDateSeparator(r rune) bool {
	return r == '/' || r == '-' || r == '.'
}

// NormalizeDate converts D/M/Y, D-M-Y or D.M.Y (and Y-M-D when the first component is a
// year) into YYYY-MM-DD. It reports false when the input is not a real calendar date.
func NormalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if parts := strings.FieldsFunc(raw, isDateSeparator); len(parts) == 3 {
		if d, ok := dateFromParts(parts); ok {
			return d, true
		}
	}

	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(dateLayout), true
		}
	}
	return "", false
}

func dateFromParts(parts []string) (string, bool) {
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return "", false
		}
		nums[i] = n
	}

	var y, m, d int
	if nums[0] > 1000 {
		y, m, d = nums[0], nums[1], nums[2]
	} else {
		d, m, y = nums[0], nums[1], nums[2]
		if y < 100 {
			y += 2000
		}
	}

	if m < 1 || m > 12 || d < 1 {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalises 31/2 into March; reject instead
	if t.Day() != d || int(t.Month()) != m {
		return "", false
	}
	return t.Format(dateLayout), true
}

// NormalizeTime zero-pads an H:M style time into HH:mm. A bare hour ("9") means on the
// hour; "." is accepted as separator and an am/pm suffix is honoured. It reports false for
// blank or unreadable input.
func NormalizeTime(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}

	pm, am := strings.HasSuffix(s, "pm"), strings.HasSuffix(s, "am")
	if pm || am {
		s = strings.TrimSpace(s[:len(s)-2])
	}

	hourPart, minutePart := s, "0"
	if i := strings.IndexAny(s, ":."); i >= 0 {
		hourPart, minutePart = s[:i], s[i+1:]
		// drop seconds
		if j := strings.IndexAny(minutePart, ":."); j >= 0 {
			minutePart = minutePart[:j]
		}
	}

	h, err := strconv.Atoi(hourPart)
	if err != nil {
		return "", false
	}
	m, err := strconv.Atoi(minutePart)
	if err != nil {
		return "", false
	}

	switch {
	case pm && h < 12:
		h += 12
	case am && h == 12:
		h = 0
	}

	if h < 0 || h > 23 || m < 0 || m > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", h, m), true
}
