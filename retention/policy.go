package retention

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultDailyCapacity   = 7
	DefaultWeeklyCapacity  = 4
	DefaultMonthlyCapacity = 12
	DefaultDailyWindowDays = 7
	DefaultWeeklyAnchor    = time.Sunday
)

// Policy holds the per-tier capacities and calendar alignment rules.
// A zero capacity or a zero daily window disables the tier.
type Policy struct {
	DailyCapacity   int
	WeeklyCapacity  int
	MonthlyCapacity int
	DailyWindowDays int
	WeeklyAnchor    time.Weekday
	Location        *time.Location // calendar used by the alignment predicates, UTC if nil
}

func DefaultPolicy() Policy {
	return Policy{
		DailyCapacity:   DefaultDailyCapacity,
		WeeklyCapacity:  DefaultWeeklyCapacity,
		MonthlyCapacity: DefaultMonthlyCapacity,
		DailyWindowDays: DefaultDailyWindowDays,
		WeeklyAnchor:    DefaultWeeklyAnchor,
		Location:        time.UTC,
	}
}

func (p Policy) Validate() error {
	var errs []error
	if p.DailyCapacity < 0 {
		errs = append(errs, fmt.Errorf("daily capacity must not be negative, got %d", p.DailyCapacity))
	}
	if p.WeeklyCapacity < 0 {
		errs = append(errs, fmt.Errorf("weekly capacity must not be negative, got %d", p.WeeklyCapacity))
	}
	if p.MonthlyCapacity < 0 {
		errs = append(errs, fmt.Errorf("monthly capacity must not be negative, got %d", p.MonthlyCapacity))
	}
	if p.DailyWindowDays < 0 {
		errs = append(errs, fmt.Errorf("daily window must not be negative, got %d", p.DailyWindowDays))
	}
	if p.WeeklyAnchor < time.Sunday || p.WeeklyAnchor > time.Saturday {
		errs = append(errs, fmt.Errorf("invalid weekly anchor %d", p.WeeklyAnchor))
	}
	return errors.Join(errs...)
}

// Capacity returns the maximum number of artifacts kept in tier.
func (p Policy) Capacity(tier Tier) int {
	switch tier {
	case Daily:
		return p.DailyCapacity
	case Weekly:
		return p.WeeklyCapacity
	case Monthly:
		return p.MonthlyCapacity
	default:
		return 0
	}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (p Policy) MarshalZerologObject(e *zerolog.Event) {
	e.Int("daily", p.DailyCapacity)
	e.Int("weekly", p.WeeklyCapacity)
	e.Int("monthly", p.MonthlyCapacity)
	e.Int("daily_window_days", p.DailyWindowDays)
	e.Str("weekly_anchor", p.WeeklyAnchor.String())
	e.Str("location", p.location().String())
}
