package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeatures_Tiers(t *testing.T) {
	free := Features(TierFree)
	assert.False(t, free.CanCustomParlay)

	pro := Features(TierPro)
	assert.True(t, pro.CanCustomParlay)
	assert.Equal(t, 5, pro.DailyQuota)
	assert.Equal(t, 6, pro.MaxLegs)

	premium := Features(TierPremium)
	assert.True(t, premium.CanCustomParlay)
	assert.Equal(t, 0, premium.DailyQuota, "premium is unlimited")
	assert.Equal(t, 10, premium.MaxLegs)
}

func TestFeatures_UnknownFallsBackToFree(t *testing.T) {
	assert.Equal(t, Features(TierFree), Features("enterprise"))
	assert.Equal(t, Features(TierFree), Features(""))
	assert.Equal(t, Features(TierPro), Features(" PRO "), "tier lookup is case and space insensitive")
}
