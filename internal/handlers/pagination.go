package handlers

import (
	"errors"
	"strconv"
)

const maxPageLimit = 100

func parsePaginationParams(pageStr, limitStr string) (int64, int64, error) {
	page := int64(1)
	limit := int64(20)

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, errors.New("invalid page parameter")
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 || l > maxPageLimit {
			return 0, 0, errors.New("invalid limit parameter")
		}
		limit = l
	}

	return page, limit, nil
}
