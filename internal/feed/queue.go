package feed

// Queue buffers fetched items and releases them on demand. Items handed to
// the caller move from the buffer to the returned list, so at any time the
// upstream list equals returned ++ buffer ++ (not yet fetched).
//
// Queue is not safe for concurrent use.
type Queue[T any] struct {
	pageSize int
	returned []T
	buffer   []T
}

// NewQueue creates an empty queue releasing pageSize items per page
func NewQueue[T any](pageSize int) *Queue[T] {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Queue[T]{pageSize: pageSize}
}

// HasCache reports whether items were released since the last Restore
func (q *Queue[T]) HasCache() bool {
	return len(q.returned) > 0
}

// SliceCount releases up to count items from the front of the buffer
func (q *Queue[T]) SliceCount(count int) []T {
	if count <= 0 || len(q.buffer) == 0 {
		return nil
	}
	count = min(count, len(q.buffer))
	out := make([]T, count)
	copy(out, q.buffer[:count])
	q.buffer = q.buffer[count:]
	return q.Return(out)
}

// SlicePage releases page pages worth of items
func (q *Queue[T]) SlicePage(page int) []T {
	if page <= 0 {
		page = 1
	}
	return q.SliceCount(q.pageSize * page)
}

// Return records items as released and hands them back unchanged
func (q *Queue[T]) Return(items []T) []T {
	q.returned = append(q.returned, items...)
	return items
}

// Restore moves every released item back in front of the buffer
func (q *Queue[T]) Restore() {
	if len(q.returned) == 0 {
		return
	}
	buf := make([]T, 0, len(q.returned)+len(q.buffer))
	buf = append(buf, q.returned...)
	buf = append(buf, q.buffer...)
	q.buffer = buf
	q.returned = nil
}

// Push appends fetched items to the buffer
func (q *Queue[T]) Push(items ...T) {
	q.buffer = append(q.buffer, items...)
}

// Buffered returns the number of items waiting to be released
func (q *Queue[T]) Buffered() int {
	return len(q.buffer)
}

// Returned returns the number of released items
func (q *Queue[T]) Returned() int {
	return len(q.returned)
}

// PageSize returns the number of items per page
func (q *Queue[T]) PageSize() int {
	return q.pageSize
}
