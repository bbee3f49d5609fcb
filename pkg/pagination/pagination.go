package pagination

// PageSize is the fixed number of rows returned by every listing endpoint.
const PageSize = 15

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page int
}

// NormalizePage clamps the requested page number to a minimum of one.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// Offset returns the row offset for the normalized page.
func Offset(page int) int {
	return (NormalizePage(page) - 1) * PageSize
}

// Page wraps one page of items together with the pre-pagination total.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	PageNumber int   `json:"page_number"`
	PageSize   int   `json:"page_size"`
}

// NewPage builds a result page, normalizing the page number.
func NewPage[T any](items []T, total int64, page int) Page[T] {
	return Page[T]{
		Items:      items,
		TotalCount: total,
		PageNumber: NormalizePage(page),
		PageSize:   PageSize,
	}
}

// TotalPages derives the page count from the filtered total.
func (p Page[T]) TotalPages() int {
	if p.TotalCount <= 0 {
		return 0
	}
	return int((p.TotalCount + PageSize - 1) / PageSize)
}
