package models

import (
	"fmt"
	"strconv"

	"github.com/u1f408/accord/core"
)

// ParseSnowflake converts a Discord id string into its numeric form.
func ParseSnowflake(id string) (uint64, error) {
	v, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", id, core.ErrInvalidSnowflake)
	}
	return v, nil
}

// parseOptionalSnowflake maps an empty id to zero, for ids Discord omits on some objects.
func parseOptionalSnowflake(id string) (uint64, error) {
	if id == "" {
		return 0, nil
	}
	return ParseSnowflake(id)
}
