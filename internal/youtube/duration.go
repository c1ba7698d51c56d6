package youtube

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalidDuration is returned for durations that are not ISO-8601
// (PnDTnHnMnS, as used by the videos endpoint).
var ErrInvalidDuration = errors.New("invalid ISO-8601 duration")

// ParseDuration parses the ISO-8601 durations YouTube reports, such as
// "PT4M13S", "PT1H2M" or "P1DT3H". Week, month and year designators are
// rejected.
func ParseDuration(s string) (time.Duration, error) {
	if len(s) < 2 || s[0] != 'P' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	var (
		total    time.Duration
		inTime   bool
		digits   string
		seenUnit bool
	)
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits += string(c)
			continue
		case c == 'T':
			if inTime || digits != "" {
				return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
			}
			inTime = true
			continue
		}

		if digits == "" {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		digits = ""

		var unit time.Duration
		switch {
		case c == 'D' && !inTime:
			unit = 24 * time.Hour
		case c == 'H' && inTime:
			unit = time.Hour
		case c == 'M' && inTime:
			unit = time.Minute
		case c == 'S' && inTime:
			unit = time.Second
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		total += time.Duration(n) * unit
		seenUnit = true
	}

	if digits != "" || !seenUnit {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return total, nil
}

// FormatDuration renders d as "h:mm:ss", or "m:ss" under an hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
