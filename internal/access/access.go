// Package access maps subscription tiers to feature entitlements.
package access

import "strings"

// Tier is a user's subscription level.
type Tier string

const (
	TierFree    Tier = "free"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

// FeatureSet lists what a tier may do.
type FeatureSet struct {
	// CanCustomParlay allows ad-hoc generation requests beyond the daily
	// picks.
	CanCustomParlay bool
	// DailyQuota caps custom generations per day; 0 means unlimited.
	DailyQuota int
	// MaxLegs caps the leg count on a custom request.
	MaxLegs int
}

var tierFeatures = map[Tier]FeatureSet{
	TierFree:    {CanCustomParlay: false, DailyQuota: 0, MaxLegs: 0},
	TierPro:     {CanCustomParlay: true, DailyQuota: 5, MaxLegs: 6},
	TierPremium: {CanCustomParlay: true, DailyQuota: 0, MaxLegs: 10},
}

// Features returns the entitlements for a tier. Unknown or empty tiers get
// the free set.
func Features(tier Tier) FeatureSet {
	t := Tier(strings.ToLower(strings.TrimSpace(string(tier))))
	if fs, ok := tierFeatures[t]; ok {
		return fs
	}
	return tierFeatures[TierFree]
}
