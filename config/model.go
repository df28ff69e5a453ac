package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezones must resolve in minimal containers

	"github.com/rs/zerolog"
	"github.com/stupid-simple/retention/retention"
)

type Config struct {
	Targets []Target `json:"targets,omitempty" yaml:"targets,omitempty"`
	// Days of run history to keep in the database. Zero keeps everything.
	HistoryDays int `json:"history_days,omitempty" yaml:"history_days,omitempty"`
}

// Target is one backup root managed by its own retention policy.
// Capacities left unset fall back to the defaults; set them to 0 explicitly
// to disable a tier.
type Target struct {
	Name            string   `json:"name" yaml:"name"`
	RootDir         string   `json:"root_dir" yaml:"root_dir"`
	TypeTag         string   `json:"type_tag" yaml:"type_tag"`
	Enable          bool     `json:"enable" yaml:"enable"`
	Schedule        string   `json:"cron" yaml:"cron"`
	Daily           *int     `json:"daily,omitempty" yaml:"daily,omitempty"`
	Weekly          *int     `json:"weekly,omitempty" yaml:"weekly,omitempty"`
	Monthly         *int     `json:"monthly,omitempty" yaml:"monthly,omitempty"`
	DailyWindowDays *int     `json:"daily_window_days,omitempty" yaml:"daily_window_days,omitempty"`
	WeeklyAnchor    string   `json:"weekly_anchor,omitempty" yaml:"weekly_anchor,omitempty"`
	Timezone        string   `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Concurrency     int      `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Excludes        []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`
	// Read 10-digit numbers in names as unix seconds.
	UnixSeconds bool `json:"unix_seconds,omitempty" yaml:"unix_seconds,omitempty"`
}

// DisplayName returns the name used in logs and run history.
func (t Target) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	if t.TypeTag != "" {
		return t.RootDir + ":" + t.TypeTag
	}
	return t.RootDir
}

// Policy converts the target settings into a retention policy.
func (t Target) Policy() (retention.Policy, error) {
	p := retention.DefaultPolicy()
	if t.Daily != nil {
		p.DailyCapacity = *t.Daily
	}
	if t.Weekly != nil {
		p.WeeklyCapacity = *t.Weekly
	}
	if t.Monthly != nil {
		p.MonthlyCapacity = *t.Monthly
	}
	if t.DailyWindowDays != nil {
		p.DailyWindowDays = *t.DailyWindowDays
	}

	anchor, err := ParseWeekday(t.WeeklyAnchor)
	if err != nil {
		return p, err
	}
	p.WeeklyAnchor = anchor

	loc, err := LoadLocation(t.Timezone)
	if err != nil {
		return p, err
	}
	p.Location = loc

	return p, p.Validate()
}

func (t Target) MarshalZerologObject(e *zerolog.Event) {
	e.Str("name", t.DisplayName())
	e.Str("root_dir", t.RootDir)
	e.Str("type_tag", t.TypeTag)
	e.Bool("enable", t.Enable)
	e.Str("schedule", t.Schedule)

	if p, err := t.Policy(); err == nil {
		e.Object("policy", p)
	}
	if t.Concurrency > 1 {
		e.Int("concurrency", t.Concurrency)
	}
	if len(t.Excludes) > 0 {
		e.Strs("excludes", t.Excludes)
	}
	if t.UnixSeconds {
		e.Bool("unix_seconds", true)
	}
}

// ParseWeekday accepts full or three letter English day names, case
// insensitive. An empty string means Sunday.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return retention.DefaultWeeklyAnchor, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// LoadLocation resolves an IANA zone name. An empty string means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

func IntPtr(v int) *int {
	return &v
}
