// Package batch runs multi-item operations with per-item error isolation.
// There is no transactional envelope: items that succeed stay applied even
// when later items fail, and the caller gets a full per-item report.
package batch

import "context"

// ItemError describes a single failed item.
type ItemError struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

// Result summarizes a batch run.
type Result struct {
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Errors     []ItemError `json:"errors,omitempty"`
}

// Run applies fn to each item sequentially. Item failures are recorded and
// never abort the run; context cancellation marks all remaining items failed
// without invoking fn for them.
func Run[T any](ctx context.Context, items []T, label func(T) string, fn func(ctx context.Context, item T) error) Result {
	var res Result
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			for _, rest := range items[i:] {
				res.Failed++
				res.Errors = append(res.Errors, ItemError{Item: label(rest), Reason: err.Error()})
			}
			break
		}
		if err := fn(ctx, item); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, ItemError{Item: label(item), Reason: err.Error()})
			continue
		}
		res.Successful++
	}
	return res
}
