// Package listview filters in-memory lists and reveals them in batches.
package listview

import "strings"

const (
	DefaultBatchSize = 30

	// LoadMoreThreshold is the remaining scroll distance, in pixels, below
	// which the next batch is revealed.
	LoadMoreThreshold = 2160
)

// Searchable is implemented by records that expose the values a free-text
// query is matched against.
type Searchable interface {
	SearchFields() []string
}

// Filter keeps the items where any field contains query, ignoring case. A
// blank query returns items unchanged.
func Filter[T any](items []T, query string, fields func(T) []string) []T {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, value := range fields(item) {
			if strings.Contains(strings.ToLower(value), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

func FilterSearchable[T Searchable](items []T, query string) []T {
	return Filter(items, query, func(item T) []string { return item.SearchFields() })
}

// ShouldLoadMore reports whether the remaining distance to the end of the
// rendered window is close enough to reveal another batch.
func ShouldLoadMore(remaining int) bool {
	return remaining < LoadMoreThreshold
}

// Window is a growing visible prefix over the filtered items.
type Window[T any] struct {
	items     []T
	filtered  []T
	fields    func(T) []string
	query     string
	batchSize int
	visible   int
}

func NewWindow[T any](items []T, fields func(T) []string, batchSize int) *Window[T] {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	w := &Window[T]{items: items, fields: fields, batchSize: batchSize}
	w.SetQuery("")
	return w
}

// SetQuery refilters the items and resets the window to the first batch.
func (w *Window[T]) SetQuery(query string) {
	w.query = query
	w.filtered = Filter(w.items, query, w.fields)
	w.visible = min(w.batchSize, len(w.filtered))
}

// LoadMore reveals the next batch. It does nothing once every filtered item
// is visible.
func (w *Window[T]) LoadMore() {
	w.visible = min(w.visible+w.batchSize, len(w.filtered))
}

// LoadUntil reveals batches until at least n items are visible or the
// filtered items run out.
func (w *Window[T]) LoadUntil(n int) {
	for w.visible < n && w.HasMore() {
		w.LoadMore()
	}
}

// OnScroll reveals another batch when remaining is below LoadMoreThreshold.
func (w *Window[T]) OnScroll(remaining int) bool {
	if !ShouldLoadMore(remaining) || !w.HasMore() {
		return false
	}
	w.LoadMore()
	return true
}

func (w *Window[T]) Visible() []T {
	return w.filtered[:w.visible]
}

func (w *Window[T]) Filtered() []T {
	return w.filtered
}

func (w *Window[T]) HasMore() bool {
	return w.visible < len(w.filtered)
}

func (w *Window[T]) VisibleCount() int {
	return w.visible
}

func (w *Window[T]) Total() int {
	return len(w.items)
}

func (w *Window[T]) BatchSize() int {
	return w.batchSize
}

func (w *Window[T]) Query() string {
	return w.query
}
