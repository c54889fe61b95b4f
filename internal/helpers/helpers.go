package helpers

import "github.com/cyphera/cyphera-rebalancer/internal/constants"

// IsValidStage checks if the provided stage string is one of the defined valid stages.
func IsValidStage(stage string) bool {
	switch stage {
	case constants.StageProd, constants.StageDev, constants.StageLocal:
		return true
	default:
		return false
	}
}
