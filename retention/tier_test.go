package retention_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stupid-simple/retention/retention"
)

func TestTier_String(t *testing.T) {
	assert.Equal(t, "daily", retention.Daily.String())
	assert.Equal(t, "weekly", retention.Weekly.String())
	assert.Equal(t, "monthly", retention.Monthly.String())
	assert.Equal(t, "unclassified", retention.Unclassified.String())
	assert.Equal(t, "tier(42)", retention.Tier(42).String())
}

func TestTier_JSON(t *testing.T) {
	raw, err := json.Marshal(map[string]retention.Tier{"tier": retention.Weekly})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tier":"weekly"}`, string(raw))

	var decoded struct {
		Tier retention.Tier `json:"tier"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tier":"Monthly"}`), &decoded))
	assert.Equal(t, retention.Monthly, decoded.Tier)

	assert.Error(t, json.Unmarshal([]byte(`{"tier":"yearly"}`), &decoded))
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, retention.DefaultPolicy().Validate())
	assert.NoError(t, retention.Policy{}.Validate())

	p := retention.DefaultPolicy()
	p.DailyCapacity = -1
	p.MonthlyCapacity = -2
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily capacity")
	assert.Contains(t, err.Error(), "monthly capacity")

	p = retention.DefaultPolicy()
	p.WeeklyAnchor = 9
	assert.Error(t, p.Validate())
}

func TestPolicy_Capacity(t *testing.T) {
	p := retention.DefaultPolicy()
	assert.Equal(t, 7, p.Capacity(retention.Daily))
	assert.Equal(t, 4, p.Capacity(retention.Weekly))
	assert.Equal(t, 12, p.Capacity(retention.Monthly))
	assert.Equal(t, 0, p.Capacity(retention.Unclassified))
}
