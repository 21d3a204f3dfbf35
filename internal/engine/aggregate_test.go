package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/climate-rank/internal/model"
	"github.com/sells-group/climate-rank/internal/profile"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func TestAggregate_Emissions(t *testing.T) {
	t.Parallel()

	t.Run("mean over qualifying periods only", func(t *testing.T) {
		t.Parallel()
		records := []model.DisclosureRecord{
			{EntityID: "acme", Period: 2021, Scope1: fp(100), Scope2: fp(50)},
			{EntityID: "acme", Period: 2022}, // no scopes, does not qualify
			{EntityID: "acme", Period: 2023, Scope1: fp(80), Scope2: fp(40)},
		}
		got := Aggregate(records, profile.DefaultScale)
		require.Len(t, got, 1)
		assert.InDelta(t, 135, got[0].MeanEmissions, 0.0001) // (150+120)/2
		assert.Equal(t, 3, got[0].Periods)
	})

	t.Run("missing scope counts as zero within a qualifying period", func(t *testing.T) {
		t.Parallel()
		records := []model.DisclosureRecord{
			{EntityID: "acme", Period: 2022, Scope1: fp(100)},
		}
		got := Aggregate(records, profile.DefaultScale)
		require.Len(t, got, 1)
		assert.InDelta(t, 100, got[0].MeanEmissions, 0.0001)
		assert.NotContains(t, got[0].Warnings, model.WarnNoEmissions)
	})

	t.Run("no emissions data at all", func(t *testing.T) {
		t.Parallel()
		records := []model.DisclosureRecord{
			{EntityID: "acme", Period: 2022},
			{EntityID: "acme", Period: 2023},
		}
		got := Aggregate(records, profile.DefaultScale)
		require.Len(t, got, 1)
		assert.Zero(t, got[0].MeanEmissions)
		assert.Contains(t, got[0].Warnings, model.WarnNoEmissions)
	})
}

func TestAggregate_Trend(t *testing.T) {
	t.Parallel()

	t.Run("percent change between earliest and latest qualifying periods", func(t *testing.T) {
		t.Parallel()
		records := []model.DisclosureRecord{
			{EntityID: "acme", Period: 2023, Scope1: fp(80), Scope2: fp(40)},
			{EntityID: "acme", Period: 2021, Scope1: fp(100), Scope2: fp(50)},
		}
		got := Aggregate(records, profile.DefaultScale)
		require.Len(t, got, 1)
		assert.InDelta(t, -20, got[0].TrendPct, 0.0001) // (120-150)/150*100
	})

	t.Run("interior all-null period does not break the trend", func(t *testing.T) {
		t.Parallel()
		records := []model.DisclosureRecord{
			{EntityID: "acme", Period: 2021, Scope1: fp(100)},
			{EntityID: "acme", Period: 2022},
			{EntityID: "acme", Period: 2023, Scope1: fp(150)},
		}
		got := Aggregate(records, profile.DefaultScale)
		assert.InDelta(t, 50, got[0].TrendPct, 0.0001)
	})

	t.Run("single qualifying period yields zero", func(t *testing.T) {
		t.Parallel()
		records := []model.DisclosureRecord{
			{EntityID: "acme", Period: 2022, Scope1: fp(100)},
		}
		got := Aggregate(records, profile.DefaultScale)
		assert.Zero(t, got[0].TrendPct)
	})

	t.Run("zero baseline yields zero", func(t *testing.T) {
		t.Parallel()
		records := []model.DisclosureRecord{
			{EntityID: "acme", Period: 2021, Scope1: fp(0), Scope2: fp(0)},
			{EntityID: "acme", Period: 2022, Scope1: fp(500)},
		}
		got := Aggregate(records, profile.DefaultScale)
		assert.Zero(t, got[0].TrendPct)
	})
}

func TestAggregate_Credibility(t *testing.T) {
	t.Parallel()

	t.Run("mean of available assessments", func(t *testing.T) {
		t.Parallel()
		records := []model.DisclosureRecord{
			{EntityID: "acme", Period: 2021, Credibility: &model.Credibility{Score: 2}},
			{EntityID: "acme", Period: 2022},
			{EntityID: "acme", Period: 2023, Credibility: &model.Credibility{Score: 3}},
		}
		got := Aggregate(records, profile.DefaultScale)
		assert.InDelta(t, 2.5, got[0].CredibilityAvg, 0.0001)
		assert.NotContains(t, got[0].Warnings, model.WarnNoCredibility)
	})

	t.Run("no assessments falls back to scale minimum", func(t *testing.T) {
		t.Parallel()
		records := []model.DisclosureRecord{
			{EntityID: "acme", Period: 2022, Scope1: fp(10)},
		}
		got := Aggregate(records, profile.DefaultScale)
		assert.InDelta(t, profile.DefaultScale.Min, got[0].CredibilityAvg, 0.0001)
		assert.Contains(t, got[0].Warnings, model.WarnNoCredibility)
	})
}

func TestAggregate_TargetResolution(t *testing.T) {
	t.Parallel()

	t.Run("matches net-zero spelling variants", func(t *testing.T) {
		t.Parallel()
		for _, desc := range []string{
			"Net Zero by mid-century",
			"reach net-zero operations",
			"NET_ZERO commitment",
			"netzero pledge",
		} {
			records := []model.DisclosureRecord{
				{EntityID: "acme", Period: 2022, Targets: []model.Target{
					{Description: desc, TargetPeriod: ip(2045)},
				}},
			}
			got := Aggregate(records, profile.DefaultScale)
			require.NotNil(t, got[0].DeclaredTargetPeriod, "description %q should match", desc)
			assert.Equal(t, 2045, *got[0].DeclaredTargetPeriod)
		}
	})

	t.Run("ignores non net-zero targets", func(t *testing.T) {
		t.Parallel()
		records := []model.DisclosureRecord{
			{EntityID: "acme", Period: 2022, Targets: []model.Target{
				{Description: "carbon neutral by 2030", TargetPeriod: ip(2030)},
				{Description: "50% reduction", TargetPeriod: ip(2035)},
			}},
		}
		got := Aggregate(records, profile.DefaultScale)
		assert.Nil(t, got[0].DeclaredTargetPeriod)
		assert.Contains(t, got[0].Warnings, model.WarnNoTarget)
	})

	t.Run("ignores matches without a period", func(t *testing.T) {
		t.Parallel()
		records := []model.DisclosureRecord{
			{EntityID: "acme", Period: 2022, Targets: []model.Target{
				{Description: "net zero someday"},
			}},
		}
		got := Aggregate(records, profile.DefaultScale)
		assert.Nil(t, got[0].DeclaredTargetPeriod)
	})

	t.Run("picks the maximum period across all matches", func(t *testing.T) {
		t.Parallel()
		records := []model.DisclosureRecord{
			{EntityID: "acme", Period: 2021, Targets: []model.Target{
				{Description: "net zero scope 1", TargetPeriod: ip(2040)},
			}},
			{EntityID: "acme", Period: 2023, Targets: []model.Target{
				{Description: "net zero full value chain", TargetPeriod: ip(2050)},
				{Description: "net zero operations", TargetPeriod: ip(2035)},
			}},
		}
		got := Aggregate(records, profile.DefaultScale)
		require.NotNil(t, got[0].DeclaredTargetPeriod)
		assert.Equal(t, 2050, *got[0].DeclaredTargetPeriod)
	})
}

func TestAggregate_AssuredFollowsLatestPeriod(t *testing.T) {
	t.Parallel()

	records := []model.DisclosureRecord{
		{EntityID: "acme", Period: 2023, Assured: false},
		{EntityID: "acme", Period: 2021, Assured: true},
	}
	got := Aggregate(records, profile.DefaultScale)
	assert.False(t, got[0].Assured)
}

func TestAggregate_EntityOrderAndGrouping(t *testing.T) {
	t.Parallel()

	records := []model.DisclosureRecord{
		{EntityID: "beta", Period: 2022, Scope1: fp(1)},
		{EntityID: "alpha", Period: 2022, Scope1: fp(2)},
		{EntityID: "beta", Period: 2023, Scope1: fp(3)},
	}
	got := Aggregate(records, profile.DefaultScale)
	require.Len(t, got, 2)
	assert.Equal(t, "beta", got[0].EntityID)
	assert.Equal(t, "alpha", got[1].EntityID)
	assert.Equal(t, 2, got[0].Periods)
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Aggregate(nil, profile.DefaultScale))
}
