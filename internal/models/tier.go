package models

import (
	"fmt"
	"strings"
)

// Tier is a subscription level. It gates the monthly generation quota and
// which templates a user may generate from.
type Tier string

const (
	TierFree       Tier = "FREE"
	TierStarter    Tier = "STARTER"
	TierPro        Tier = "PRO"
	TierEnterprise Tier = "ENTERPRISE"
)

var tierLimits = map[Tier]int{
	TierFree:       3,
	TierStarter:    25,
	TierPro:        100,
	TierEnterprise: 1000,
}

var tierRanks = map[Tier]int{
	TierFree:       0,
	TierStarter:    1,
	TierPro:        2,
	TierEnterprise: 3,
}

func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := tierLimits[t]; !ok {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}

// MonthlyLimit is the number of completed generations allowed per calendar month.
// Unknown tiers get the FREE allowance.
func (t Tier) MonthlyLimit() int {
	if l, ok := tierLimits[t]; ok {
		return l
	}
	return tierLimits[TierFree]
}

func (t Tier) Rank() int {
	return tierRanks[t]
}

// Includes reports whether t grants access to content requiring other.
func (t Tier) Includes(other Tier) bool {
	return t.Rank() >= other.Rank()
}

func AllTiers() []Tier {
	return []Tier{TierFree, TierStarter, TierPro, TierEnterprise}
}
