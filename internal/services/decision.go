package services

import "github.com/cyphera/cyphera-rebalancer/internal/types/business"

// Decision thresholds on the 0..100 sentiment scale. Each bound is inclusive.
const (
	extremeFearMax = 25
	fearMax        = 45
	neutralMax     = 54
	greedMax       = 75

	strongMoveBps = 500
	mildMoveBps   = 250
)

// Decide maps a sentiment score to the day's action. Fear buys the target asset, greed sells
// it, and the neutral band holds. Out of range scores are clamped.
func Decide(score int) business.Decision {
	switch {
	case score < 0:
		score = 0
	case score > 100:
		score = 100
	}

	switch {
	case score <= extremeFearMax:
		return business.Decision{Action: business.ActionAccumulate, BasisPoints: strongMoveBps}
	case score <= fearMax:
		return business.Decision{Action: business.ActionAccumulate, BasisPoints: mildMoveBps}
	case score <= neutralMax:
		return business.Decision{Action: business.ActionHold}
	case score <= greedMax:
		return business.Decision{Action: business.ActionReduce, BasisPoints: mildMoveBps}
	default:
		return business.Decision{Action: business.ActionReduce, BasisPoints: strongMoveBps}
	}
}
