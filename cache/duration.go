package cache

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

var relativeTerm = regexp.MustCompile(`(?i)\+?\s*(\d+)\s*(seconds?|secs?|minutes?|mins?|hours?|days?|weeks?|months?|years?)\b`)

// ParseDuration reads cache durations. It accepts Go duration strings
// ("90s", "1h30m"), a bare number of seconds ("3600") and relative phrases
// such as "+1 hour", "2 days" or "+1 hour 30 minutes". The empty string
// means no per-entry expiry and parses to 0.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, invalidDuration(s)
		}
		return d, nil
	}

	if n, err := strconv.ParseInt(strings.TrimPrefix(s, "+"), 10, 64); err == nil {
		if n < 0 {
			return 0, invalidDuration(s)
		}
		return time.Duration(n) * time.Second, nil
	}

	matches := relativeTerm.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return 0, invalidDuration(s)
	}

	var total time.Duration
	last := 0
	for _, m := range matches {
		if strings.TrimSpace(s[last:m[0]]) != "" {
			return 0, invalidDuration(s)
		}
		last = m[1]

		n, err := strconv.ParseInt(s[m[2]:m[3]], 10, 64)
		if err != nil {
			return 0, invalidDuration(s)
		}
		total += time.Duration(n) * unitOf(s[m[4]:m[5]])
	}
	if strings.TrimSpace(s[last:]) != "" {
		return 0, invalidDuration(s)
	}

	return total, nil
}

func unitOf(word string) time.Duration {
	w := strings.ToLower(word)
	switch {
	case strings.HasPrefix(w, "sec"):
		return time.Second
	case strings.HasPrefix(w, "min"):
		return time.Minute
	case strings.HasPrefix(w, "hour"):
		return time.Hour
	case strings.HasPrefix(w, "day"):
		return day
	case strings.HasPrefix(w, "week"):
		return week
	case strings.HasPrefix(w, "month"):
		return month
	default:
		return year
	}
}

func invalidDuration(s string) error {
	return goerrors.New("invalid cache duration", goerrors.CategoryValidation).
		WithTextCode(TextCodeInvalidDuration).
		WithMetadata(map[string]any{"duration": s})
}
