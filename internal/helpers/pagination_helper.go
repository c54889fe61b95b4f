package helpers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit int32 = 10
	maxLimit     int32 = 100
)

// ParseLimit reads the "limit" query parameter, applying a default of 10 and a ceiling of 100.
func ParseLimit(c *gin.Context) (int32, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	parsed, err := strconv.ParseInt(limitStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %w", err)
	}
	if parsed <= 0 {
		return defaultLimit, nil
	}
	if int32(parsed) > maxLimit {
		return maxLimit, nil
	}
	return int32(parsed), nil
}
