package handlers

import (
	"admin-backend/app/server/constants"
	"fmt"
)

// parsePagination 返回 limit 与 offset ， limit 超过上限时截断
func (a *App) parsePagination(limit *int, offset *int) (int, int, error) {
	parsedLimit, parsedOffset := constants.PaginationDefaultLimit, 0

	if limit != nil {
		if *limit < 1 {
			return 0, 0, fmt.Errorf("limit must be positive, got %d", *limit)
		}
		parsedLimit = min(*limit, constants.PaginationMaxLimit)
	}

	if offset != nil {
		if *offset < 0 {
			return 0, 0, fmt.Errorf("offset must not be negative, got %d", *offset)
		}
		parsedOffset = *offset
	}

	return parsedLimit, parsedOffset, nil
}
