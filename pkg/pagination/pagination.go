package pagination

const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// Clamp normalizes a limit/offset pair: a non-positive limit becomes def,
// a limit above max becomes max, a negative offset becomes 0.
func Clamp(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if limit < 1 {
		limit = 1
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// LastPage returns the last 1-based page holding total items, never less than 1.
func LastPage(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// Offset converts a 1-based page number into a row offset.
func Offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
