package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sharppicks/parlay-engine/internal/model"
)

// cityPrefixes are leading qualifiers stripped before fuzzy matching, longest
// first so "new york city" wins over "new york". Dropping the city leaves the
// nickname, which both the model and the scores feed reliably agree on.
var cityPrefixes = []string{
	"new york city", "oklahoma city", "golden state", "los angeles",
	"san francisco", "new england", "tampa bay", "new orleans", "kansas city",
	"san antonio", "green bay", "las vegas", "salt lake", "st louis",
	"san diego", "san jose", "okc", "la", "ny", "sf", "lv",
}

// genericSuffixes are trailing words that carry no identity.
var genericSuffixes = []string{"fc", "sc", "cf", "united"}

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeTeam reduces a team name to a comparable form: lowercase, strip
// diacritics and punctuation, drop a known city prefix and generic suffix
// words, collapse whitespace.
func normalizeTeam(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if folded, _, err := transform.String(deaccent, s); err == nil {
		s = folded
	}
	s = strings.Map(func(r rune) rune {
		if r == '.' || r == '\'' {
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")

	for _, prefix := range cityPrefixes {
		if s == prefix {
			break
		}
		if strings.HasPrefix(s, prefix+" ") {
			s = strings.TrimPrefix(s, prefix+" ")
			break
		}
	}
	for _, suffix := range genericSuffixes {
		if s != suffix && strings.HasSuffix(s, " "+suffix) {
			s = strings.TrimSuffix(s, " "+suffix)
		}
	}
	return strings.TrimSpace(s)
}

// sideMatches reports whether a leg's team refers to one side of a game,
// allowing either normalized name to contain the other.
func sideMatches(legTeam, gameTeam string) bool {
	lt := normalizeTeam(legTeam)
	gt := normalizeTeam(gameTeam)
	if lt == "" || gt == "" {
		return false
	}
	return lt == gt || strings.Contains(gt, lt) || strings.Contains(lt, gt)
}

// matchGame finds the completed game a leg belongs to. The leg's team must
// match one side; a present opponent must match the other.
func matchGame(leg model.Leg, games []model.CompletedGame) *model.CompletedGame {
	for i := range games {
		g := &games[i]
		if !g.Completed {
			continue
		}
		switch {
		case sideMatches(leg.Team, g.HomeTeam):
			if leg.Opponent == "" || sideMatches(leg.Opponent, g.AwayTeam) {
				return g
			}
		case sideMatches(leg.Team, g.AwayTeam):
			if leg.Opponent == "" || sideMatches(leg.Opponent, g.HomeTeam) {
				return g
			}
		}
	}
	return nil
}
