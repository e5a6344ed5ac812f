package generate

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharppicks/parlay-engine/internal/model"
)

func dailyRespond(prompt string) any {
	switch {
	case strings.Contains(prompt, "RISK PROFILE (safe"):
		return `{"legs": [` +
			legJSON("g1", "Boston Celtics", "-200") + `, ` +
			legJSON("g2", "Denver Nuggets", "-350") + `, ` +
			legJSON("g3", "Phoenix Suns", "-150") + `]}`
	case strings.Contains(prompt, "RISK PROFILE (risky"):
		return `{"legs": [` +
			legJSON("g1", "Miami Heat", "+170") + `, ` +
			legJSON("g2", "Utah Jazz", "+280") + `, ` +
			legJSON("g3", "Dallas Mavericks", "+130") + `]}`
	default:
		return `{"legs": [` +
			legJSON("g1", "Boston Celtics", "-200") + `, ` +
			legJSON("g2", "Utah Jazz", "+280") + `, ` +
			legJSON("g3", "Phoenix Suns", "-150") + `]}`
	}
}

func TestRunDaily_AllArchetypes(t *testing.T) {
	ai := &scriptedAI{respond: dailyRespond}
	odds := &fakeOdds{games: rawGames()}
	db := newMemStore()
	g := newTestGenerator(ai, odds, db)

	outcomes, err := g.RunDaily(context.Background(), []string{"basketball_nba"}, "2026-03-14", false)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	types := make(map[model.ParlayType]model.DailyOutcome)
	for _, o := range outcomes {
		types[o.Type] = o
	}
	for _, pt := range []model.ParlayType{model.ParlayTypeSafe, model.ParlayTypeBalanced, model.ParlayTypeRisky} {
		o, ok := types[pt]
		require.True(t, ok, "missing archetype %s", pt)
		assert.True(t, o.Success, "archetype %s failed: %s", pt, o.Error)
		assert.NotEmpty(t, o.ParlayID)
	}

	// One shared odds fetch for the whole batch.
	assert.Equal(t, 1, odds.fetches)

	require.Len(t, db.created, 3)
	for _, p := range db.created {
		assert.True(t, p.IsDaily)
		assert.Equal(t, "2026-03-14", p.DailyDate)
		assert.Len(t, p.Legs, 3)
	}
}

func TestRunDaily_ArchetypesFailIndependently(t *testing.T) {
	ai := &scriptedAI{respond: func(prompt string) any {
		if strings.Contains(prompt, "RISK PROFILE (risky") {
			return "not json at all"
		}
		return dailyRespond(prompt)
	}}
	db := newMemStore()
	g := newTestGenerator(ai, &fakeOdds{games: rawGames()}, db)

	outcomes, err := g.RunDaily(context.Background(), []string{"basketball_nba"}, "2026-03-14", false)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	var failed, succeeded int
	for _, o := range outcomes {
		if o.Success {
			succeeded++
		} else {
			failed++
			assert.Equal(t, model.ParlayTypeRisky, o.Type)
			assert.NotEmpty(t, o.Error)
		}
	}
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, failed)
	assert.Len(t, db.created, 2)
}

func TestRunDaily_FallsBackToStandardMarkets(t *testing.T) {
	ai := &scriptedAI{respond: dailyRespond}
	odds := &fakeOdds{} // both fetches come back empty
	g := newTestGenerator(ai, odds, newMemStore())

	outcomes, err := g.RunDaily(context.Background(), []string{"basketball_nba"}, "2026-03-14", false)
	require.NoError(t, err)
	assert.Equal(t, 2, odds.fetches, "rich fetch then standard fallback")

	for _, o := range outcomes {
		assert.False(t, o.Success)
		assert.NotEmpty(t, o.Error)
	}
}

func TestRunDaily_ReusesExistingCycle(t *testing.T) {
	ai := &scriptedAI{respond: dailyRespond}
	odds := &fakeOdds{games: rawGames()}
	db := newMemStore()
	db.daily["2026-03-14"] = []model.Parlay{
		{ID: "existing-1", Type: model.ParlayTypeSafe, IsDaily: true, DailyDate: "2026-03-14"},
	}
	g := newTestGenerator(ai, odds, db)

	outcomes, err := g.RunDaily(context.Background(), []string{"basketball_nba"}, "2026-03-14", false)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "existing-1", outcomes[0].ParlayID)
	assert.Equal(t, 0, ai.calls)
	assert.Equal(t, 0, odds.fetches)
}

func TestRunDaily_ForceRebuildsCycle(t *testing.T) {
	ai := &scriptedAI{respond: dailyRespond}
	db := newMemStore()
	db.daily["2026-03-14"] = []model.Parlay{
		{ID: "existing-1", Type: model.ParlayTypeSafe, IsDaily: true, DailyDate: "2026-03-14"},
	}
	g := newTestGenerator(ai, &fakeOdds{games: rawGames()}, db)

	outcomes, err := g.RunDaily(context.Background(), []string{"basketball_nba"}, "2026-03-14", true)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.Equal(t, []string{"2026-03-14"}, db.deleted)
	assert.Len(t, db.created, 3)
}

func TestRunDaily_RequiresDate(t *testing.T) {
	g := newTestGenerator(&scriptedAI{}, &fakeOdds{}, newMemStore())
	_, err := g.RunDaily(context.Background(), []string{"basketball_nba"}, "", false)
	require.Error(t, err)
}
