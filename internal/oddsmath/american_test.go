package oddsmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmerican(t *testing.T) {
	v, err := ParseAmerican("+150")
	require.NoError(t, err)
	assert.Equal(t, 150.0, v)

	v, err = ParseAmerican("-110")
	require.NoError(t, err)
	assert.Equal(t, -110.0, v)

	v, err = ParseAmerican(" 225 ")
	require.NoError(t, err)
	assert.Equal(t, 225.0, v)

	_, err = ParseAmerican("0")
	require.Error(t, err)

	_, err = ParseAmerican("even")
	require.Error(t, err)
}

func TestNormalizeSign(t *testing.T) {
	assert.Equal(t, "+150", NormalizeSign("150"))
	assert.Equal(t, "+150", NormalizeSign("+150"))
	assert.Equal(t, "-110", NormalizeSign("-110"))
	assert.Equal(t, "", NormalizeSign(""))
	// Non-numeric text passes through untouched.
	assert.Equal(t, "even", NormalizeSign("even"))
}

func TestAmericanToDecimal(t *testing.T) {
	d, err := AmericanToDecimal(150)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, d, 0.001)

	d, err = AmericanToDecimal(-150)
	require.NoError(t, err)
	assert.InDelta(t, 1.667, d, 0.001)

	_, err = AmericanToDecimal(0)
	require.Error(t, err)
}

func TestDecimalToAmerican(t *testing.T) {
	a, err := DecimalToAmerican(2.5)
	require.NoError(t, err)
	assert.Equal(t, 150, a)

	a, err = DecimalToAmerican(1.667)
	require.NoError(t, err)
	assert.Equal(t, -150, a)

	_, err = DecimalToAmerican(1.0)
	require.Error(t, err)
}

func TestParlayOdds(t *testing.T) {
	// +150 → 2.5, -120 → 1.8333; product 4.5833 → +358.
	total, err := ParlayOdds([]string{"+150", "-120"})
	require.NoError(t, err)
	assert.Equal(t, "+358", total)

	// Two heavy favorites stay negative: -200 → 1.5, -200 → 1.5, product
	// 2.25 → +125.
	total, err = ParlayOdds([]string{"-200", "-200"})
	require.NoError(t, err)
	assert.Equal(t, "+125", total)

	// Single strong favorite round-trips to itself.
	total, err = ParlayOdds([]string{"-350"})
	require.NoError(t, err)
	assert.Equal(t, "-350", total)

	_, err = ParlayOdds(nil)
	require.Error(t, err)

	_, err = ParlayOdds([]string{"+150", "bad"})
	require.Error(t, err)
}

// fixedRand returns a constant for deterministic confidence tests.
type fixedRand struct{ v float64 }

func (f fixedRand) Float64() float64 { return f.v }

func TestConfidence(t *testing.T) {
	// Midpoint jitter (0.5 → +0) yields the band base.
	assert.Equal(t, 85, Confidence(2, fixedRand{0.5}))
	assert.Equal(t, 75, Confidence(5, fixedRand{0.5}))
	assert.Equal(t, 65, Confidence(9, fixedRand{0.5}))

	// Jitter stays within the clamp.
	assert.Equal(t, 80, Confidence(1, fixedRand{0.0}))
	assert.Equal(t, 89, Confidence(3, fixedRand{0.999}))

	// Nil RNG means no jitter.
	assert.Equal(t, 75, Confidence(6, nil))
}
