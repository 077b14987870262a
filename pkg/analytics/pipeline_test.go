package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultStages = []string{"New", "Contacted", "Qualified", "Closed"}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(defaultStages)
	require.NoError(t, err)
	return e
}

func at(day int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(day) * 24 * time.Hour)
}

func TestNewEngine(t *testing.T) {
	t.Run("rejects empty stage list", func(t *testing.T) {
		_, err := NewEngine(nil)
		assert.Error(t, err)
	})

	t.Run("rejects duplicate stages", func(t *testing.T) {
		_, err := NewEngine([]string{"New", "New"})
		assert.Error(t, err)
	})

	t.Run("custom stage order drives successor pairing", func(t *testing.T) {
		e, err := NewEngine([]string{"Inbox", "Won"})
		require.NoError(t, err)

		metrics, err := e.Compute([]Lead{
			{ID: 1, Status: "Inbox"},
			{ID: 2, Status: "Inbox"},
			{ID: 3, Status: "Won"},
		}, nil)
		require.NoError(t, err)
		require.Len(t, metrics, 2)
		assert.Equal(t, "Inbox", metrics[0].Status)
		assert.Equal(t, 50.0, metrics[0].ConversionRatePercent)
		assert.Equal(t, 0.0, metrics[1].ConversionRatePercent)
	})
}

func TestComputeCountsAndRates(t *testing.T) {
	e := newTestEngine(t)

	t.Run("one row per stage in order even with no leads", func(t *testing.T) {
		metrics, err := e.Compute(nil, nil)
		require.NoError(t, err)
		require.Len(t, metrics, 4)
		for i, stage := range defaultStages {
			assert.Equal(t, stage, metrics[i].Status)
			assert.Equal(t, 0, metrics[i].LeadCount)
			assert.Equal(t, 0.0, metrics[i].ConversionRatePercent)
			assert.Equal(t, 0.0, metrics[i].AvgDwellDays)
		}
	})

	t.Run("counts reflect current status only", func(t *testing.T) {
		metrics, err := e.Compute([]Lead{
			{ID: 1, Status: "New"},
			{ID: 2, Status: "New"},
			{ID: 3, Status: "Contacted"},
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, 2, metrics[0].LeadCount)
		assert.Equal(t, 50.0, metrics[0].ConversionRatePercent)
		assert.Equal(t, 1, metrics[1].LeadCount)
		assert.Equal(t, 0.0, metrics[1].ConversionRatePercent)
		assert.Equal(t, 0, metrics[2].LeadCount)
		assert.Equal(t, 0.0, metrics[2].ConversionRatePercent)
		assert.Equal(t, 0, metrics[3].LeadCount)
	})

	t.Run("rates round to two decimals", func(t *testing.T) {
		metrics, err := e.Compute([]Lead{
			{ID: 1, Status: "New"},
			{ID: 2, Status: "New"},
			{ID: 3, Status: "New"},
			{ID: 4, Status: "Contacted"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 33.33, metrics[0].ConversionRatePercent)
	})

	t.Run("terminal stage rate is always zero", func(t *testing.T) {
		metrics, err := e.Compute([]Lead{
			{ID: 1, Status: "Closed"},
			{ID: 2, Status: "Closed"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, metrics[3].LeadCount)
		assert.Equal(t, 0.0, metrics[3].ConversionRatePercent)
	})

	t.Run("unknown lead status fails", func(t *testing.T) {
		_, err := e.Compute([]Lead{{ID: 1, Status: "Bogus"}}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown stage")
	})
}

func TestComputeDwell(t *testing.T) {
	e := newTestEngine(t)

	t.Run("pairs entries with the same lead leaving the stage", func(t *testing.T) {
		metrics, err := e.Compute(
			[]Lead{{ID: 1, Name: "Acme", Status: "Contacted"}},
			[]Transition{
				{LeadID: 1, To: "New", OccurredAt: at(0)},
				{LeadID: 1, From: "New", To: "Contacted", OccurredAt: at(2)},
			},
		)
		require.NoError(t, err)
		assert.Equal(t, 2.0, metrics[0].AvgDwellDays)
		assert.Equal(t, 0.0, metrics[1].AvgDwellDays)
	})

	t.Run("deletion closes an open stay", func(t *testing.T) {
		metrics, err := e.Compute(nil, []Transition{
			{LeadID: 7, To: "New", OccurredAt: at(0)},
			{LeadID: 7, From: "New", To: "", OccurredAt: at(3)},
		})
		require.NoError(t, err)
		assert.Equal(t, 3.0, metrics[0].AvgDwellDays)
	})

	t.Run("other leads never close a stay", func(t *testing.T) {
		metrics, err := e.Compute(nil, []Transition{
			{LeadID: 1, To: "New", OccurredAt: at(0)},
			{LeadID: 2, To: "New", OccurredAt: at(1)},
			{LeadID: 2, From: "New", To: "Contacted", OccurredAt: at(2)},
			{LeadID: 1, From: "New", To: "Contacted", OccurredAt: at(5)},
		})
		require.NoError(t, err)
		// lead 1: 5 days, lead 2: 1 day
		assert.Equal(t, 3.0, metrics[0].AvgDwellDays)
	})

	t.Run("open stays contribute nothing", func(t *testing.T) {
		metrics, err := e.Compute(
			[]Lead{{ID: 1, Status: "New"}},
			[]Transition{{LeadID: 1, To: "New", OccurredAt: at(0)}},
		)
		require.NoError(t, err)
		assert.Equal(t, 0.0, metrics[0].AvgDwellDays)
	})

	t.Run("fractional days round to two decimals", func(t *testing.T) {
		metrics, err := e.Compute(nil, []Transition{
			{LeadID: 1, To: "New", OccurredAt: at(0)},
			{LeadID: 1, From: "New", To: "Contacted", OccurredAt: at(0).Add(8 * time.Hour)},
		})
		require.NoError(t, err)
		assert.Equal(t, 0.33, metrics[0].AvgDwellDays)
	})
}

func TestComputeFromActivity(t *testing.T) {
	e := newTestEngine(t)

	t.Run("initial and transition markers both count as entry", func(t *testing.T) {
		metrics, err := e.ComputeFromActivity(
			[]Lead{{ID: 1, Name: "Acme", Status: "Contacted"}},
			[]Activity{
				{Action: `Lead "Acme" status changed to New`, CreatedAt: at(0)},
				{Action: `Lead "Acme" status changed from New to Contacted`, CreatedAt: at(2)},
			},
		)
		require.NoError(t, err)
		assert.Equal(t, 2.0, metrics[0].AvgDwellDays)
		assert.Equal(t, 0.0, metrics[1].AvgDwellDays)
	})

	t.Run("exit markers match by stage regardless of lead", func(t *testing.T) {
		metrics, err := e.ComputeFromActivity(nil, []Activity{
			{Action: `Lead "Acme" status changed to New`, CreatedAt: at(0)},
			{Action: `Lead "Globex" status changed from New to Contacted`, CreatedAt: at(1)},
		})
		require.NoError(t, err)
		assert.Equal(t, 1.0, metrics[0].AvgDwellDays)
	})

	t.Run("deletion closes a stay only for the named lead", func(t *testing.T) {
		metrics, err := e.ComputeFromActivity(nil, []Activity{
			{Action: `Lead "Acme" status changed to New`, CreatedAt: at(0)},
			{Action: "Lead deleted: Globex", CreatedAt: at(1)},
			{Action: "Lead deleted: Acme", CreatedAt: at(4)},
		})
		require.NoError(t, err)
		assert.Equal(t, 4.0, metrics[0].AvgDwellDays)
	})

	t.Run("bare marker text without a quoted name still counts as entry", func(t *testing.T) {
		metrics, err := e.ComputeFromActivity(nil, []Activity{
			{Action: "status changed to Contacted", CreatedAt: at(0)},
			{Action: `Lead "X" status changed from Contacted to Qualified`, CreatedAt: at(2)},
		})
		require.NoError(t, err)
		assert.Equal(t, 2.0, metrics[1].AvgDwellDays)
	})

	t.Run("unrelated records contribute nothing", func(t *testing.T) {
		metrics, err := e.ComputeFromActivity(
			[]Lead{{ID: 1, Status: "New"}, {ID: 2, Status: "New"}, {ID: 3, Status: "Contacted"}},
			[]Activity{
				{Action: "Created lead: Acme", CreatedAt: at(0)},
				{Action: "Sent email to Acme", CreatedAt: at(1)},
			},
		)
		require.NoError(t, err)
		assert.Equal(t, 2, metrics[0].LeadCount)
		assert.Equal(t, 50.0, metrics[0].ConversionRatePercent)
		assert.Equal(t, 0.0, metrics[0].AvgDwellDays)
		assert.Equal(t, 1, metrics[1].LeadCount)
	})

	t.Run("exit at the same instant does not close the stay", func(t *testing.T) {
		metrics, err := e.ComputeFromActivity(nil, []Activity{
			{Action: `Lead "Acme" status changed to New`, CreatedAt: at(0)},
			{Action: `Lead "Acme" status changed from New to Contacted`, CreatedAt: at(0)},
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, metrics[0].AvgDwellDays)
	})
}

func TestMarkerParsing(t *testing.T) {
	assert.True(t, isStageEntry(`Lead "Acme" status changed to New`, "New"))
	assert.True(t, isStageEntry(`Lead "Acme" status changed from New to Contacted`, "Contacted"))
	assert.False(t, isStageEntry(`Lead "Acme" status changed from New to Contacted`, "New"))
	assert.False(t, isStageEntry("Created lead: Acme", "New"))

	assert.True(t, isStageExit(`Lead "Acme" status changed from New to Contacted`, "New"))
	assert.False(t, isStageExit(`Lead "Acme" status changed to New`, "New"))

	assert.Equal(t, "Acme", leadNameFromMarker(`Lead "Acme" status changed to New`))
	assert.Equal(t, "", leadNameFromMarker("status changed to New"))

	assert.True(t, isDeletionOf("Lead deleted: Acme", "Acme"))
	assert.False(t, isDeletionOf("Lead deleted: Acme Corp", "Acme"))
	assert.False(t, isDeletionOf("Lead deleted: Acme", ""))
}

func TestCalculateRate(t *testing.T) {
	assert.Equal(t, 0.0, calculateRate(5, 0))
	assert.Equal(t, 50.0, calculateRate(1, 2))
	assert.Equal(t, 66.67, calculateRate(2, 3))
	assert.Equal(t, 100.0, calculateRate(3, 3))
}
