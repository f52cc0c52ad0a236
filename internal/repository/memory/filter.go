package memory

import (
	"fmt"

	"pagecraft-be/internal/repository/specification"
)

// listOptions are the non-filter parts of a spec list.
type listOptions struct {
	orders []specification.OrderBy
	drain  bool
	page   *specification.Pagination
}

// splitSpecs separates row filters from ordering and pagination so filters
// apply before, and pagination after, the sort.
func splitSpecs(specs []specification.Specification) ([]specification.Specification, listOptions) {
	var filters []specification.Specification
	var opts listOptions
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OrderBy:
			opts.orders = append(opts.orders, s)
		case specification.DrainOrder:
			opts.drain = true
		case specification.Pagination:
			p := s
			opts.page = &p
		default:
			filters = append(filters, spec)
		}
	}
	return filters, opts
}

// paginate mirrors LIMIT/OFFSET: a zero limit yields no rows, a negative
// one disables the cap.
func paginate[T any](items []*T, page *specification.Pagination) []*T {
	if page == nil {
		return items
	}
	start := page.Offset
	if start < 0 {
		start = 0
	}
	if start > len(items) {
		start = len(items)
	}
	items = items[start:]
	if page.Limit >= 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

func unsupportedSpec(repo string, spec specification.Specification) string {
	return fmt.Sprintf("memory: %s does not support specification %T", repo, spec)
}

func unsupportedOrder(repo string, field string) string {
	return fmt.Sprintf("memory: %s cannot order by %q", repo, field)
}
