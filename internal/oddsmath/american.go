// Package oddsmath implements American odds conversions and parlay pricing.
package oddsmath

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ParseAmerican parses an American odds string ("+150", "-110", "150")
// into its numeric value.
func ParseAmerican(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "oddsmath: parse american odds %q", s)
	}
	if v == 0 {
		return 0, eris.New("oddsmath: american odds cannot be 0")
	}
	return v, nil
}

// FormatAmerican renders American odds with an explicit sign.
func FormatAmerican(v int) string {
	if v > 0 {
		return fmt.Sprintf("+%d", v)
	}
	return strconv.Itoa(v)
}

// NormalizeSign ensures a positive odds string carries a leading "+".
// Negative and malformed values pass through untouched.
func NormalizeSign(s string) string {
	t := strings.TrimSpace(s)
	if t == "" || strings.HasPrefix(t, "+") || strings.HasPrefix(t, "-") {
		return t
	}
	if _, err := strconv.ParseFloat(t, 64); err != nil {
		return t
	}
	return "+" + t
}

// AmericanToDecimal converts American odds to a decimal multiplier.
// +150 → 2.50, -150 → 1.667.
func AmericanToDecimal(american float64) (float64, error) {
	if american == 0 {
		return 0, eris.New("oddsmath: american odds cannot be 0")
	}
	if american > 0 {
		return 1.0 + american/100.0, nil
	}
	return 1.0 + 100.0/(-american), nil
}

// DecimalToAmerican converts a decimal multiplier back to American odds.
// Products above 2.0 price as underdogs (+), below as favorites (-).
func DecimalToAmerican(decimal float64) (int, error) {
	if decimal <= 1.0 {
		return 0, eris.New("oddsmath: decimal odds must be > 1.0")
	}
	if decimal > 2.0 {
		return int(math.Round((decimal - 1.0) * 100.0)), nil
	}
	return -int(math.Round(100.0 / (decimal - 1.0))), nil
}

// ParlayOdds multiplies the individual legs' decimal equivalents and
// converts the product back to an American odds string. This computed value
// is what gets persisted; the model's own total-odds claim is ignored.
func ParlayOdds(legOdds []string) (string, error) {
	if len(legOdds) == 0 {
		return "", eris.New("oddsmath: no legs to combine")
	}
	product := 1.0
	for _, s := range legOdds {
		v, err := ParseAmerican(s)
		if err != nil {
			return "", err
		}
		dec, err := AmericanToDecimal(v)
		if err != nil {
			return "", err
		}
		product *= dec
	}
	american, err := DecimalToAmerican(product)
	if err != nil {
		return "", err
	}
	return FormatAmerican(american), nil
}
