package retention_test

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stupid-simple/retention/catalog"
	"github.com/stupid-simple/retention/retention"
)

// Sunday.
var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func artifactAt(id string, createdAt time.Time) catalog.Artifact {
	return catalog.Artifact{
		Identifier:      id,
		Path:            "/backups/" + id,
		CreatedAt:       createdAt,
		SizeBytes:       1024,
		TimestampSource: catalog.TimestampFromName,
	}
}

// aged returns an artifact created at 02:00 UTC, ageDays calendar days before now.
func aged(ageDays int) catalog.Artifact {
	createdAt := time.Date(now.Year(), now.Month(), now.Day()-ageDays, 2, 0, 0, 0, time.UTC)
	return artifactAt(fmt.Sprintf("db_%s.sql", createdAt.Format("20060102_150405")), createdAt)
}

func tiersByID(cls []retention.Classification) map[string]retention.Tier {
	out := make(map[string]retention.Tier, len(cls))
	for _, cl := range cls {
		out[cl.Artifact.Identifier] = cl.Tier
	}
	return out
}

func newClassifier(t *testing.T, p retention.Policy) *retention.Classifier {
	return retention.NewClassifier(p, zerolog.New(zerolog.NewTestWriter(t)))
}

func TestClassify_DailyWindowAndCapacity(t *testing.T) {
	p := retention.DefaultPolicy()
	p.DailyCapacity = 7
	p.DailyWindowDays = 7

	artifacts := make([]catalog.Artifact, 0, 10)
	for age := 0; age < 10; age++ {
		artifacts = append(artifacts, aged(age))
	}

	cls := newClassifier(t, p).Classify(now, artifacts)
	require.Len(t, cls, 10)

	for i, cl := range cls {
		assert.Equal(t, i, cl.AgeDays)
		switch {
		case i <= 6:
			assert.Equal(t, retention.Daily, cl.Tier, "age %d", i)
		case i == 7:
			// 2026-10-11 is a Sunday
			assert.Equal(t, retention.Weekly, cl.Tier, "age %d", i)
		default:
			assert.Equal(t, retention.Unclassified, cl.Tier, "age %d", i)
		}
	}

	assert.Equal(t, retention.Counts{Daily: 7, Weekly: 1, Unclassified: 2}, retention.CountTiers(cls))
}

func TestClassify_WeeklyAnchor(t *testing.T) {
	saturday := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	sunday20DaysAgo := artifactAt("db_20260927_020000.sql", time.Date(2026, 9, 27, 2, 0, 0, 0, time.UTC))

	p := retention.DefaultPolicy()
	p.WeeklyCapacity = 4
	p.WeeklyAnchor = time.Sunday

	cls := newClassifier(t, p).Classify(saturday, []catalog.Artifact{sunday20DaysAgo})
	require.Len(t, cls, 1)
	assert.Equal(t, 20, cls[0].AgeDays)
	assert.Equal(t, retention.Weekly, cls[0].Tier)

	p.WeeklyAnchor = time.Monday
	cls = newClassifier(t, p).Classify(saturday, []catalog.Artifact{sunday20DaysAgo})
	assert.Equal(t, retention.Unclassified, cls[0].Tier)
}

func TestClassify_WeeklyCapacityExhausted(t *testing.T) {
	p := retention.DefaultPolicy()
	p.WeeklyCapacity = 2
	p.MonthlyCapacity = 0

	// five Sundays before the daily window
	artifacts := []catalog.Artifact{aged(14), aged(21), aged(28), aged(35), aged(42)}
	cls := newClassifier(t, p).Classify(now, artifacts)

	tiers := tiersByID(cls)
	assert.Equal(t, retention.Weekly, tiers[aged(14).Identifier])
	assert.Equal(t, retention.Weekly, tiers[aged(21).Identifier])
	assert.Equal(t, retention.Unclassified, tiers[aged(28).Identifier])
	assert.Equal(t, retention.Unclassified, tiers[aged(35).Identifier])
	assert.Equal(t, retention.Unclassified, tiers[aged(42).Identifier])
}

func TestClassify_Monthly(t *testing.T) {
	p := retention.DefaultPolicy()
	p.MonthlyCapacity = 2

	artifacts := []catalog.Artifact{
		artifactAt("db_20260901.sql", time.Date(2026, 9, 1, 2, 0, 0, 0, time.UTC)),
		artifactAt("db_20260801.sql", time.Date(2026, 8, 1, 2, 0, 0, 0, time.UTC)),
		artifactAt("db_20260701.sql", time.Date(2026, 7, 1, 2, 0, 0, 0, time.UTC)),
		artifactAt("db_20260702.sql", time.Date(2026, 7, 2, 2, 0, 0, 0, time.UTC)),
	}

	tiers := tiersByID(newClassifier(t, p).Classify(now, artifacts))
	assert.Equal(t, retention.Monthly, tiers["db_20260901.sql"])
	assert.Equal(t, retention.Monthly, tiers["db_20260801.sql"])
	assert.Equal(t, retention.Unclassified, tiers["db_20260701.sql"])
	assert.Equal(t, retention.Unclassified, tiers["db_20260702.sql"])
}

func TestClassify_WeeklyCheckedBeforeMonthly(t *testing.T) {
	// 2026-03-01 and 2026-02-01 are both Sundays and first days of the month.
	march := artifactAt("db_20260301.sql", time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC))
	february := artifactAt("db_20260201.sql", time.Date(2026, 2, 1, 2, 0, 0, 0, time.UTC))

	p := retention.DefaultPolicy()
	p.WeeklyCapacity = 1
	p.MonthlyCapacity = 1

	tiers := tiersByID(newClassifier(t, p).Classify(now, []catalog.Artifact{march, february}))
	assert.Equal(t, retention.Weekly, tiers[march.Identifier])
	assert.Equal(t, retention.Monthly, tiers[february.Identifier])
}

func TestClassify_ZeroDailyCapacity(t *testing.T) {
	p := retention.DefaultPolicy()
	p.DailyCapacity = 0

	artifacts := make([]catalog.Artifact, 0, 50)
	for age := 0; age < 50; age++ {
		artifacts = append(artifacts, aged(age))
	}

	cls := newClassifier(t, p).Classify(now, artifacts)
	counts := retention.CountTiers(cls)

	assert.Zero(t, counts.Daily)
	// Sundays at ages 0, 7, 14, 21 fill the weekly tier, 2026-10-01 and 2026-09-01 are monthly.
	assert.Equal(t, 4, counts.Weekly)
	assert.Equal(t, 2, counts.Monthly)
	assert.Equal(t, 50, counts.Daily+counts.Weekly+counts.Monthly+counts.Unclassified)
}

func TestClassify_ZeroDailyWindow(t *testing.T) {
	p := retention.DefaultPolicy()
	p.DailyWindowDays = 0

	cls := newClassifier(t, p).Classify(now, []catalog.Artifact{aged(0), aged(1)})
	// aged(0) is a Sunday
	assert.Equal(t, retention.Weekly, cls[0].Tier)
	assert.Equal(t, retention.Unclassified, cls[1].Tier)
}

func TestClassify_AllTiersDisabled(t *testing.T) {
	cls := newClassifier(t, retention.Policy{}).Classify(now, []catalog.Artifact{aged(0), aged(7), aged(17)})
	for _, cl := range cls {
		assert.Equal(t, retention.Unclassified, cl.Tier)
	}
}

func TestClassify_Empty(t *testing.T) {
	cls := newClassifier(t, retention.DefaultPolicy()).Classify(now, nil)
	assert.Empty(t, cls)
}

func TestClassify_SameDayOrderedByIdentifier(t *testing.T) {
	p := retention.DefaultPolicy()
	p.DailyCapacity = 1

	// Monday, so neither is weekly or monthly aligned.
	later := artifactAt("b_files", time.Date(2026, 10, 12, 22, 0, 0, 0, time.UTC))
	earlier := artifactAt("a_files", time.Date(2026, 10, 12, 1, 0, 0, 0, time.UTC))

	for _, input := range [][]catalog.Artifact{{later, earlier}, {earlier, later}} {
		cls := newClassifier(t, p).Classify(now, input)
		require.Len(t, cls, 2)
		assert.Equal(t, "a_files", cls[0].Artifact.Identifier)
		assert.Equal(t, retention.Daily, cls[0].Tier)
		assert.Equal(t, "b_files", cls[1].Artifact.Identifier)
		assert.Equal(t, retention.Unclassified, cls[1].Tier)
	}
}

func TestClassify_MalformedTimestamp(t *testing.T) {
	p := retention.DefaultPolicy()
	p.DailyCapacity = 1

	broken := catalog.Artifact{
		Identifier:   "db_20261399.sql",
		TimestampErr: &catalog.ClassificationError{Identifier: "db_20261399.sql", Token: "20261399"},
	}

	cls := newClassifier(t, p).Classify(now, []catalog.Artifact{broken, aged(1)})
	tiers := tiersByID(cls)

	assert.Equal(t, retention.Unclassified, tiers[broken.Identifier])
	assert.Equal(t, retention.Daily, tiers[aged(1).Identifier], "malformed artifact must not consume capacity")

	for _, cl := range cls {
		if cl.Artifact.Identifier == broken.Identifier {
			var classErr *catalog.ClassificationError
			assert.ErrorAs(t, cl.Err, &classErr)
		}
	}
}

func TestClassify_FutureTimestampIsRecent(t *testing.T) {
	future := artifactAt("db_future", now.Add(36*time.Hour))
	cls := newClassifier(t, retention.DefaultPolicy()).Classify(now, []catalog.Artifact{future})
	assert.Equal(t, 0, cls[0].AgeDays)
	assert.Equal(t, retention.Daily, cls[0].Tier)
}

func TestClassify_DoesNotMutateInput(t *testing.T) {
	input := []catalog.Artifact{aged(3), aged(1), aged(2)}
	_ = newClassifier(t, retention.DefaultPolicy()).Classify(now, input)
	assert.Equal(t, aged(3).Identifier, input[0].Identifier)
	assert.Equal(t, aged(1).Identifier, input[1].Identifier)
}

func TestClassify_Invariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for run := 0; run < 50; run++ {
		p := retention.Policy{
			DailyCapacity:   rng.IntN(10),
			WeeklyCapacity:  rng.IntN(6),
			MonthlyCapacity: rng.IntN(13),
			DailyWindowDays: rng.IntN(10),
			WeeklyAnchor:    time.Weekday(rng.IntN(7)),
		}

		artifacts := make([]catalog.Artifact, 0, 80)
		for i := 0; i < 80; i++ {
			createdAt := now.Add(-time.Duration(rng.IntN(400*24)) * time.Hour)
			artifacts = append(artifacts, artifactAt(fmt.Sprintf("a%03d", i), createdAt))
		}

		cls := newClassifier(t, p).Classify(now, artifacts)
		counts := retention.CountTiers(cls)

		require.LessOrEqual(t, counts.Daily, p.DailyCapacity)
		require.LessOrEqual(t, counts.Weekly, p.WeeklyCapacity)
		require.LessOrEqual(t, counts.Monthly, p.MonthlyCapacity)
		require.Len(t, cls, len(artifacts))

		// recency: every daily artifact is at least as recent as any
		// in-window artifact that was refused the daily tier
		var oldestDaily time.Time
		for _, cl := range cls {
			if cl.Tier == retention.Daily {
				oldestDaily = cl.Artifact.CreatedAt
			}
		}
		for _, cl := range cls {
			if cl.Tier != retention.Daily && cl.AgeDays <= p.DailyWindowDays && p.DailyCapacity > 0 && p.DailyWindowDays > 0 {
				require.Equal(t, p.DailyCapacity, counts.Daily)
				y1, m1, d1 := cl.Artifact.CreatedAt.Date()
				y2, m2, d2 := oldestDaily.Date()
				require.False(t,
					time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC).After(time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)),
					"artifact %s refused the daily tier ahead of an older one", cl.Artifact.Identifier)
			}
		}

		again := newClassifier(t, p).Classify(now, artifacts)
		assert.Equal(t, cls, again)
	}
}
