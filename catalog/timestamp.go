package catalog

import (
	"regexp"
	"strconv"
	"time"
)

// Years accepted when deciding whether a digit run is a date at all.
const (
	minYear = 1970
	maxYear = 2100
)

type tokenPattern struct {
	re *regexp.Regexp
	// looksLikeDate reports whether a token is shaped like a real timestamp.
	// Other tokens (counters, versions) are ignored instead of being
	// reported as malformed.
	looksLikeDate func(token string) bool
	parse         func(token string, loc *time.Location) (time.Time, error)
	unixSeconds   bool
}

// tokens returns every match of the pattern's first group, left to right.
func (p tokenPattern) tokens(name string) []string {
	var out []string
	for start := 0; start < len(name); {
		m := p.re.FindStringSubmatchIndex(name[start:])
		if m == nil {
			break
		}
		out = append(out, name[start+m[2]:start+m[3]])
		start += m[3]
	}
	return out
}

func layoutParser(layout string, sepIndex int) func(string, *time.Location) (time.Time, error) {
	return func(token string, loc *time.Location) (time.Time, error) {
		if sepIndex >= 0 {
			b := []byte(token)
			b[sepIndex] = 'T'
			token = string(b)
		}
		return time.ParseInLocation(layout, token, loc)
	}
}

func unixParser(toTime func(int64) time.Time) func(string, *time.Location) (time.Time, error) {
	return func(token string, _ *time.Location) (time.Time, error) {
		n, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return toTime(n).UTC(), nil
	}
}

func yearInRange(token string) bool {
	y, err := strconv.Atoi(token[:4])
	return err == nil && y >= minYear && y <= maxYear
}

// yearMonthInRange guards bare digit runs, which are far more often
// counters than dates.
func yearMonthInRange(token string) bool {
	if !yearInRange(token) {
		return false
	}
	m, err := strconv.Atoi(token[4:6])
	return err == nil && m >= 1 && m <= 12
}

func unixInRange(toTime func(int64) time.Time) func(string) bool {
	return func(token string) bool {
		n, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return false
		}
		y := toTime(n).UTC().Year()
		return y >= minYear && y <= maxYear
	}
}

func unixSeconds(n int64) time.Time { return time.Unix(n, 0) }

// Tokens are delimited by non-digits so that a long numeric run is never
// split into a shorter date. Ordered from most to least specific.
var tokenPatterns = []tokenPattern{
	{
		re:            regexp.MustCompile(`(?:^|\D)(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:Z|[+-]\d{2}:\d{2}))`),
		looksLikeDate: yearInRange,
		parse:         func(token string, _ *time.Location) (time.Time, error) { return time.Parse(time.RFC3339, token) },
	},
	{
		re:            regexp.MustCompile(`(?:^|\D)(\d{4}-\d{2}-\d{2}[T_]\d{2}-\d{2}-\d{2})(?:\D|$)`),
		looksLikeDate: yearInRange,
		parse:         layoutParser("2006-01-02T15-04-05", 10),
	},
	{
		re:            regexp.MustCompile(`(?:^|\D)(\d{8}[T_-]\d{6})(?:\D|$)`),
		looksLikeDate: yearInRange,
		parse:         layoutParser("20060102T150405", 8),
	},
	{
		re:            regexp.MustCompile(`(?:^|\D)(\d{14})(?:\D|$)`),
		looksLikeDate: yearMonthInRange,
		parse:         layoutParser("20060102150405", -1),
	},
	{
		re:            regexp.MustCompile(`(?:^|\D)(\d{4}-\d{2}-\d{2})(?:\D|$)`),
		looksLikeDate: yearInRange,
		parse:         layoutParser("2006-01-02", -1),
	},
	{
		// date and hour, as in db_2024031502.sql
		re:            regexp.MustCompile(`(?:^|\D)(\d{10})(?:\D|$)`),
		looksLikeDate: yearMonthInRange,
		parse:         layoutParser("2006010215", -1),
	},
	{
		re:            regexp.MustCompile(`(?:^|\D)(\d{8})(?:\D|$)`),
		looksLikeDate: yearMonthInRange,
		parse:         layoutParser("20060102", -1),
	},
	{
		// unix milliseconds, as written by archive producers that name files prefix+millis
		re:            regexp.MustCompile(`(?:^|\D)(\d{13})(?:\D|$)`),
		looksLikeDate: unixInRange(time.UnixMilli),
		parse:         unixParser(time.UnixMilli),
	},
	{
		re:            regexp.MustCompile(`(?:^|\D)(\d{10})(?:\D|$)`),
		looksLikeDate: unixInRange(unixSeconds),
		parse:         unixParser(unixSeconds),
		unixSeconds:   true,
	},
}

// NameParser extracts the creation time embedded in an artifact name.
type NameParser struct {
	// Zone-less tokens are interpreted in Location. Defaults to UTC.
	Location *time.Location
	// UnixSeconds enables 10-digit unix second tokens. They are off by
	// default since a 10-digit run is as likely a counter as a time.
	UnixSeconds bool
}

// Parse looks for a timestamp token embedded in name. found is false when
// the name carries no date shaped token. When a token is shaped like a date
// but invalid, for example 2024-02-30, err is a *ClassificationError.
func (p NameParser) Parse(name string) (t time.Time, found bool, err error) {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	for _, pattern := range tokenPatterns {
		if pattern.unixSeconds && !p.UnixSeconds {
			continue
		}
		for _, token := range pattern.tokens(name) {
			if !pattern.looksLikeDate(token) {
				continue
			}
			t, err := pattern.parse(token, loc)
			if err != nil {
				return time.Time{}, true, &ClassificationError{Identifier: name, Token: token, Err: err}
			}
			return t, true, nil
		}
	}
	return time.Time{}, false, nil
}

// ParseNameTimestamp parses name with the default NameParser in loc.
func ParseNameTimestamp(name string, loc *time.Location) (t time.Time, found bool, err error) {
	return NameParser{Location: loc}.Parse(name)
}
