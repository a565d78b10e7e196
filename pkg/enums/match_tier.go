package enums

import "fmt"

// MatchTier is the coarse locality ranking attached to allocation suggestions.
// Lower is a closer match. The tier is advisory: it orders suggestions for
// display and is never enforced on allocation submission.
type MatchTier int

const (
	MatchTierSameCommune MatchTier = 1
	MatchTierSameCity    MatchTier = 2
	MatchTierOther       MatchTier = 3
)

// IsValid reports whether the value is a known MatchTier.
func (m MatchTier) IsValid() bool {
	return m >= MatchTierSameCommune && m <= MatchTierOther
}

// ParseMatchTier converts raw input into a MatchTier.
func ParseMatchTier(value int) (MatchTier, error) {
	tier := MatchTier(value)
	if !tier.IsValid() {
		return 0, fmt.Errorf("invalid match tier %d", value)
	}
	return tier, nil
}
