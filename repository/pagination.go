package repository

import (
	"fmt"
	"math"
)

// pageBounds converts a 1-based page and page size into LIMIT/OFFSET.
// reachable is false when the offset does not fit in an int; such a page
// lies past any real table and is empty.
func pageBounds(page, pageSize int) (limit, offset int, reachable bool, err error) {
	if page < 1 || pageSize < 1 {
		return 0, 0, false, fmt.Errorf("invalid page %d/size %d: both must be positive", page, pageSize)
	}
	if page-1 > math.MaxInt/pageSize {
		return pageSize, 0, false, nil
	}
	return pageSize, (page - 1) * pageSize, true, nil
}
