package normalize

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharppicks/parlay-engine/internal/model"
)

func fp(v float64) *float64 { return &v }

func gameWith(id string, books ...model.Bookmaker) model.Game {
	return model.Game{
		ID:           id,
		SportKey:     "basketball_nba",
		HomeTeam:     "Boston Celtics",
		AwayTeam:     "Miami Heat",
		CommenceTime: time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC),
		Bookmakers:   books,
	}
}

func h2hBook(key string) model.Bookmaker {
	return model.Bookmaker{
		Key:   key,
		Title: key,
		Markets: []model.Market{{
			Key: "h2h",
			Outcomes: []model.Outcome{
				{Name: "Boston Celtics", Price: -200},
				{Name: "Miami Heat", Price: 170},
			},
		}},
	}
}

func TestPrepareGames_PrefersMajorBook(t *testing.T) {
	g := gameWith("g1", h2hBook("bovada"), h2hBook("fanduel"), h2hBook("draftkings"))

	out := PrepareGames([]model.Game{g}, []model.BetType{model.BetTypeMoneyline})
	require.Len(t, out, 1)
	require.Len(t, out[0].Bookmakers, 1)
	assert.Equal(t, "draftkings", out[0].Bookmakers[0].Key)
}

func TestPrepareGames_FallsBackToFirstQualifying(t *testing.T) {
	g := gameWith("g1", h2hBook("bovada"), h2hBook("pinnacle"))

	out := PrepareGames([]model.Game{g}, []model.BetType{model.BetTypeMoneyline})
	require.Len(t, out, 1)
	assert.Equal(t, "bovada", out[0].Bookmakers[0].Key)
}

func TestPrepareGames_DropsGamesWithoutRequestedMarkets(t *testing.T) {
	g := gameWith("g1", h2hBook("draftkings"))

	out := PrepareGames([]model.Game{g}, []model.BetType{model.BetTypePlayerProps})
	assert.Empty(t, out)
}

func TestPrepareGames_CapsGameCount(t *testing.T) {
	var games []model.Game
	for i := 0; i < 25; i++ {
		games = append(games, gameWith(fmt.Sprintf("g%d", i), h2hBook("fanduel")))
	}

	out := PrepareGames(games, []model.BetType{model.BetTypeMoneyline})
	assert.Len(t, out, maxGames)
}

func TestPrepareGames_EmptyInput(t *testing.T) {
	assert.Empty(t, PrepareGames(nil, []model.BetType{model.BetTypeMoneyline}))
}

func TestPrepareGames_EnrichesPropOutcomes(t *testing.T) {
	g := gameWith("g1", model.Bookmaker{
		Key: "fanduel",
		Markets: []model.Market{{
			Key: "player_points",
			Outcomes: []model.Outcome{
				{Name: "Over", Description: "Jayson Tatum", Price: -115, Point: fp(27.5)},
				{Name: "Over", Description: "Bam Adebayo", Price: -110, Point: fp(18.5)},
				{Name: "Over", Description: "Duncan Robinson", Price: 105, Point: fp(7.5)},
			},
		}},
	})

	out := PrepareGames([]model.Game{g}, []model.BetType{model.BetTypePlayerProps})
	require.Len(t, out, 1)
	outcomes := out[0].Bookmakers[0].Markets[0].Outcomes
	require.Len(t, outcomes, 3)

	assert.Equal(t, "Jayson Tatum", outcomes[0].Player)
	assert.Equal(t, model.ImportanceStar, outcomes[0].Importance)
	assert.Equal(t, model.DifficultyVeryHard, outcomes[0].Difficulty)

	assert.Equal(t, model.ImportanceStarter, outcomes[1].Importance)
	assert.Equal(t, model.DifficultyModerate, outcomes[1].Difficulty)

	assert.Equal(t, model.ImportanceBench, outcomes[2].Importance)
	assert.Equal(t, model.DifficultyVeryEasy, outcomes[2].Difficulty)
}

func TestExtractPlayer_StripsLeadingTokens(t *testing.T) {
	assert.Equal(t, "Jayson Tatum", ExtractPlayer(model.Outcome{Name: "Over 27.5 Jayson Tatum"}))
	assert.Equal(t, "Connor McDavid", ExtractPlayer(model.Outcome{Name: "Yes Connor McDavid"}))
	assert.Equal(t, "", ExtractPlayer(model.Outcome{Name: "Over 210.5"}))
	assert.Equal(t, "Luka Doncic", ExtractPlayer(model.Outcome{Name: "Under", Description: "Luka Doncic"}))
}

func TestExtractThreshold(t *testing.T) {
	th := ExtractThreshold(model.Outcome{Name: "Over", Point: fp(24.5)})
	require.NotNil(t, th)
	assert.Equal(t, 24.5, *th)

	th = ExtractThreshold(model.Outcome{Name: "Over 210.5"})
	require.NotNil(t, th)
	assert.Equal(t, 210.5, *th)

	assert.Nil(t, ExtractThreshold(model.Outcome{Name: "Boston Celtics"}))
}

func TestDifficultyFor_Monotonic(t *testing.T) {
	thresholds := []float64{5, 12, 17, 22, 30}
	prev := -1
	for _, th := range thresholds {
		tier := DifficultyFor("player_points", th)
		rank := model.DifficultyRank(tier)
		assert.GreaterOrEqual(t, rank, prev, "difficulty must not decrease at threshold %.1f", th)
		prev = rank
	}
	assert.Equal(t, model.DifficultyVeryEasy, DifficultyFor("player_points", 5))
	assert.Equal(t, model.DifficultyVeryHard, DifficultyFor("player_points", 30))
}

func TestDifficultyFor_UnknownCategoryUsesDefaultLadder(t *testing.T) {
	assert.Equal(t, model.DifficultyVeryEasy, DifficultyFor("player_obscure_stat", 2))
	assert.Equal(t, model.DifficultyVeryHard, DifficultyFor("player_obscure_stat", 60))
}
