package member

import (
	"fmt"

	"github.com/NAA-del/naa-portal/core"
)

// Tier is a member's membership level, ordered by authority/benefit rank.
type Tier string

const (
	TierStudent   Tier = "student"
	TierAssociate Tier = "associate"
	TierFull      Tier = "full"
	TierFellow    Tier = "fellow"
)

// AccessLevel is a label on a protected resource indicating the minimum tier
// required to view it.
type AccessLevel string

const (
	LevelPublic    AccessLevel = "public"
	LevelStudent   AccessLevel = "student"
	LevelAssociate AccessLevel = "associate"
	LevelFull      AccessLevel = "full"
	LevelFellow    AccessLevel = "fellow"
)

var (
	// AllTiers is ordered by ascending rank.
	AllTiers = []Tier{TierStudent, TierAssociate, TierFull, TierFellow}

	// AllLevels is ordered by ascending rank; this ordering is the single
	// source of truth for tier-to-level resolution.
	AllLevels = []AccessLevel{LevelPublic, LevelStudent, LevelAssociate, LevelFull, LevelFellow}

	tierRanks = map[Tier]int{
		TierStudent:   1,
		TierAssociate: 2,
		TierFull:      3,
		TierFellow:    4,
	}

	levelRanks = map[AccessLevel]int{
		LevelPublic:    0,
		LevelStudent:   1,
		LevelAssociate: 2,
		LevelFull:      3,
		LevelFellow:    4,
	}
)

// Rank returns the tier's ordinal rank. Unknown tiers are a configuration
// error; they must never silently default.
func (t Tier) Rank() (int, error) {
	rank, ok := tierRanks[t]
	if !ok {
		return 0, core.NewConfigurationError(fmt.Sprintf("unknown membership tier %q", t))
	}
	return rank, nil
}

func (t Tier) Valid() bool {
	_, ok := tierRanks[t]
	return ok
}

func (l AccessLevel) Valid() bool {
	_, ok := levelRanks[l]
	return ok
}

// ResolveAllowedLevels maps a tier to the downward-closed set of access
// levels at or below its rank. The result always contains LevelPublic and
// grows monotonically with rank.
func ResolveAllowedLevels(tier Tier) ([]AccessLevel, error) {
	rank, err := tier.Rank()
	if err != nil {
		return nil, err
	}
	allowed := make([]AccessLevel, 0, rank+1)
	for _, lvl := range AllLevels {
		if levelRanks[lvl] <= rank {
			allowed = append(allowed, lvl)
		}
	}
	return allowed, nil
}

// LevelAllowed reports whether lvl is within the tier's allowed set.
func LevelAllowed(tier Tier, lvl AccessLevel) (bool, error) {
	tierRank, err := tier.Rank()
	if err != nil {
		return false, err
	}
	lvlRank, ok := levelRanks[lvl]
	if !ok {
		return false, core.NewConfigurationError(fmt.Sprintf("unknown access level %q", lvl))
	}
	return lvlRank <= tierRank, nil
}
