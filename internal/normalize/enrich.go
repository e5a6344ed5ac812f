package normalize

import (
	_ "embed"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sharppicks/parlay-engine/internal/model"
)

//go:embed difficulty.yaml
var difficultyYAML []byte

// difficultyTable is the static prop-difficulty lookup, loaded once at
// process start and never mutated afterwards.
type difficultyTable struct {
	Categories []difficultyCategory `yaml:"categories"`
	Default    struct {
		Ladder []float64 `yaml:"ladder"`
	} `yaml:"default"`
}

type difficultyCategory struct {
	Name     string    `yaml:"name"`
	Keywords []string  `yaml:"keywords"`
	Ladder   []float64 `yaml:"ladder"`
}

var difficulty difficultyTable

func init() {
	if err := yaml.Unmarshal(difficultyYAML, &difficulty); err != nil {
		panic("normalize: parse difficulty table: " + err.Error())
	}
}

// ladderFor returns the difficulty ladder for a provider market key.
func ladderFor(marketKey string) []float64 {
	key := strings.ToLower(marketKey)
	for _, cat := range difficulty.Categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(key, kw) {
				return cat.Ladder
			}
		}
	}
	return difficulty.Default.Ladder
}

// DifficultyFor buckets a prop threshold for the given market key.
func DifficultyFor(marketKey string, threshold float64) model.DifficultyTier {
	ladder := ladderFor(marketKey)
	if len(ladder) != 4 {
		return model.DifficultyUnknown
	}
	switch {
	case threshold < ladder[0]:
		return model.DifficultyVeryEasy
	case threshold < ladder[1]:
		return model.DifficultyEasy
	case threshold < ladder[2]:
		return model.DifficultyModerate
	case threshold < ladder[3]:
		return model.DifficultyHard
	default:
		return model.DifficultyVeryHard
	}
}

// leadingToken matches the "Over 24.5" / "Under 1.5" / "Yes" / "No" prefix
// bookmakers put ahead of a player name in outcome labels.
var leadingToken = regexp.MustCompile(`^(?i)(over|under|yes|no)\s*([0-9]+(\.[0-9]+)?)?\s*`)

// firstNumber extracts the first numeric token from free text.
var firstNumber = regexp.MustCompile(`-?[0-9]+(\.[0-9]+)?`)

// ExtractPlayer pulls a player name from a prop outcome. The provider
// usually carries the player in the description and the side (Over/Under)
// in the name; older feeds inline both in the name.
func ExtractPlayer(o model.Outcome) string {
	if o.Description != "" {
		return strings.TrimSpace(leadingToken.ReplaceAllString(o.Description, ""))
	}
	name := strings.TrimSpace(leadingToken.ReplaceAllString(o.Name, ""))
	// A bare side label ("Over 24.5") leaves nothing, or only the number.
	if name == "" || firstNumber.FindString(name) == name {
		return ""
	}
	return name
}

// ExtractThreshold resolves the numeric line for an outcome: the explicit
// point field when present, else the first number in the label text.
func ExtractThreshold(o model.Outcome) *float64 {
	if o.Point != nil {
		v := *o.Point
		return &v
	}
	for _, text := range []string{o.Name, o.Description} {
		if m := firstNumber.FindString(text); m != "" {
			if v, err := strconv.ParseFloat(m, 64); err == nil {
				return &v
			}
		}
	}
	return nil
}

// importanceFor assigns tiers by position among the distinct players of one
// market: bookmakers list headline players first, so the first ~20% grade
// star, the next 30% starter, the remainder bench.
func importanceFor(position, totalPlayers int) model.ImportanceTier {
	if totalPlayers <= 0 || position < 0 {
		return model.ImportanceUnknown
	}
	frac := float64(position) / float64(totalPlayers)
	switch {
	case frac < 0.2:
		return model.ImportanceStar
	case frac < 0.5:
		return model.ImportanceStarter
	default:
		return model.ImportanceBench
	}
}

// EnrichMarket derives player, threshold, importance and difficulty for
// every outcome of a prop market in place on the given copy.
func EnrichMarket(m *model.Market) {
	isProp := strings.HasPrefix(m.Key, "player")

	// Order of first appearance per player drives the importance tier.
	playerOrder := make(map[string]int)
	if isProp {
		for _, o := range m.Outcomes {
			p := ExtractPlayer(o)
			if p == "" {
				continue
			}
			if _, seen := playerOrder[p]; !seen {
				playerOrder[p] = len(playerOrder)
			}
		}
	}

	for i := range m.Outcomes {
		o := &m.Outcomes[i]
		o.Threshold = ExtractThreshold(*o)
		if !isProp {
			continue
		}
		o.Player = ExtractPlayer(*o)
		if o.Player == "" {
			o.Importance = model.ImportanceUnknown
		} else {
			o.Importance = importanceFor(playerOrder[o.Player], len(playerOrder))
		}
		if o.Threshold != nil {
			o.Difficulty = DifficultyFor(m.Key, *o.Threshold)
		} else {
			o.Difficulty = model.DifficultyUnknown
		}
	}
}
