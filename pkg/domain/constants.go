package domain

// Resource bounds.
const (
	// MaxMomentumLevel is the highest momentum level a player can hold.
	MaxMomentumLevel = 3

	// MaxRelationship is the upper bound of a mentor relationship value.
	MaxRelationship = 100

	// MaxMastery is the upper bound of a concept's mastery value.
	MaxMastery = 100
)

// Approach tags the conversational stance of an option.
type Approach string

const (
	ApproachHumble     Approach = "humble"
	ApproachConfidence Approach = "confidence"
	ApproachPrecision  Approach = "precision"
	ApproachCreative   Approach = "creative"
)

// MomentumEffectReset forces momentum back to zero after an option is chosen.
const MomentumEffectReset = "reset"

// Clamp bounds v to the closed interval [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
