package retention

import (
	"cmp"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/stupid-simple/retention/catalog"
)

type Classification struct {
	Artifact catalog.Artifact
	Tier     Tier
	AgeDays  int
	Err      error // set when the artifact could not be classified
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (c Classification) MarshalZerologObject(e *zerolog.Event) {
	e.Str("id", c.Artifact.Identifier)
	e.Str("tier", c.Tier.String())
	e.Int("age_days", c.AgeDays)
	if c.Err != nil {
		e.AnErr("cause", c.Err)
	}
}

type Classifier struct {
	policy Policy
	logger zerolog.Logger
}

func NewClassifier(policy Policy, logger zerolog.Logger) *Classifier {
	return &Classifier{
		policy: policy,
		logger: logger,
	}
}

// Classify assigns every artifact to a tier in a single greedy pass, newest
// first. Recent artifacts fill the daily tier; older ones survive only when
// they land on a weekly or monthly boundary and that tier has room left.
// The result is returned in processing order.
func (c *Classifier) Classify(now time.Time, artifacts []catalog.Artifact) []Classification {
	loc := c.policy.location()

	ordered := slices.Clone(artifacts)
	slices.SortStableFunc(ordered, func(a, b catalog.Artifact) int {
		if byDay := calendarDay(b.CreatedAt, loc).Compare(calendarDay(a.CreatedAt, loc)); byDay != 0 {
			return byDay
		}
		return cmp.Compare(a.Identifier, b.Identifier)
	})

	counts := map[Tier]int{}
	admit := func(tier Tier) bool {
		if counts[tier] >= c.policy.Capacity(tier) {
			return false
		}
		counts[tier]++
		return true
	}

	out := make([]Classification, 0, len(ordered))
	for _, a := range ordered {
		cl := Classification{Artifact: a, Tier: Unclassified}

		if a.TimestampErr != nil {
			cl.Err = a.TimestampErr
			c.logger.Warn().Object("artifact", a).Msg("excluding artifact from classification")
			out = append(out, cl)
			continue
		}

		cl.AgeDays = AgeDays(now, a.CreatedAt)
		switch {
		case c.policy.DailyWindowDays > 0 && cl.AgeDays <= c.policy.DailyWindowDays && admit(Daily):
			cl.Tier = Daily
		case IsWeeklyAligned(a.CreatedAt, c.policy.WeeklyAnchor, loc) && admit(Weekly):
			cl.Tier = Weekly
		case IsMonthlyAligned(a.CreatedAt, loc) && admit(Monthly):
			cl.Tier = Monthly
		}

		c.logger.Debug().Object("classification", cl).Msg("classified artifact")
		out = append(out, cl)
	}

	return out
}

type Counts struct {
	Daily        int
	Weekly       int
	Monthly      int
	Unclassified int
}

func CountTiers(classifications []Classification) Counts {
	var counts Counts
	for _, cl := range classifications {
		switch cl.Tier {
		case Daily:
			counts.Daily++
		case Weekly:
			counts.Weekly++
		case Monthly:
			counts.Monthly++
		default:
			counts.Unclassified++
		}
	}
	return counts
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (c Counts) MarshalZerologObject(e *zerolog.Event) {
	e.Int("daily", c.Daily)
	e.Int("weekly", c.Weekly)
	e.Int("monthly", c.Monthly)
	e.Int("unclassified", c.Unclassified)
}
