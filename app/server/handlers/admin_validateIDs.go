package handlers

import (
	"fmt"
	"strconv"
)

func parseAdminID(raw string) (uint, error) {
	if raw == "" {
		return 0, fmt.Errorf("missing admin id")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid admin id: %s", raw)
	}
	return uint(id), nil
}
