package paging

import (
	"context"
	"iter"
	"log/slog"

	"google.golang.org/api/iterator"
)

// FetchFunc retrieves one page of a listing. pageToken is "" for the first
// page and count is the number of items returned by earlier pages of the
// same traversal. An empty nextPageToken marks the last page.
type FetchFunc[T any] func(ctx context.Context, pageToken string, count int) (items []T, nextPageToken string, err error)

// Iterator presents a cursor-paginated listing as one sequence of items.
//
// Next returns iterator.Done once a page with no next token has been fully
// consumed. Errors from the FetchFunc are returned unchanged and leave the
// cursor where it was, so calling Next again refetches the same page.
// Nothing is cached across traversals and nothing is retried.
//
// An Iterator is not safe for concurrent use.
type Iterator[T any] struct {
	fetch FetchFunc[T]
	cur   *cursor[T]
	cfg   config
}

// New returns an Iterator over the pages produced by fetch.
func New[T any](fetch FetchFunc[T], opts ...Option) *Iterator[T] {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Iterator[T]{fetch: fetch, cur: newCursor[T](), cfg: cfg}
}

// Next returns the next item.
func (it *Iterator[T]) Next(ctx context.Context) (T, error) {
	return it.cur.next(ctx, it.fetch, &it.cfg)
}

// All returns a sequence over the remaining items. The sequence keeps the
// cursor that was current when ranging began, so a later Reset does not
// disturb a traversal in progress. A fetch error is yielded once and ends
// the sequence.
func (it *Iterator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		c := it.cur
		for {
			v, err := c.next(ctx, it.fetch, &it.cfg)
			if err == iterator.Done {
				return
			}
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// Reset rewinds to the first page for subsequent traversals.
func (it *Iterator[T]) Reset() {
	it.cur = newCursor[T]()
}

// Count returns how many items the fetched pages have held so far.
func (it *Iterator[T]) Count() int {
	return it.cur.count
}

// PageToken returns the token of the next page to fetch, "" if none.
func (it *Iterator[T]) PageToken() string {
	return it.cur.pageToken
}

// Collect drains it into a slice.
func Collect[T any](ctx context.Context, it *Iterator[T]) ([]T, error) {
	var items []T
	for {
		v, err := it.Next(ctx)
		if err == iterator.Done {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, v)
	}
}

type cursor[T any] struct {
	pageToken string
	firstPage bool
	count     int
	buf       []T
}

func newCursor[T any]() *cursor[T] {
	return &cursor[T]{firstPage: true}
}

func (c *cursor[T]) next(ctx context.Context, fetch FetchFunc[T], cfg *config) (T, error) {
	var zero T
	for len(c.buf) == 0 {
		if !c.firstPage && c.pageToken == "" {
			return zero, iterator.Done
		}
		items, nextToken, err := fetch(ctx, c.pageToken, c.count)
		if err != nil {
			cfg.logger.Debug("page fetch failed", "listing", cfg.name, "page_token", c.pageToken, "count", c.count, "err", err)
			return zero, err
		}
		cfg.logger.Debug("page fetched", "listing", cfg.name, "page_token", c.pageToken, "items", len(items), "more", nextToken != "")
		c.firstPage = false
		c.pageToken = nextToken
		c.count += len(items)
		c.buf = items
	}
	v := c.buf[0]
	c.buf = c.buf[1:]
	return v, nil
}
