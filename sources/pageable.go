// Package sources holds page fetchers for external listings. The
// subpackages adapt BigQuery, Cloud Storage and Postgres to
// paging.FetchFunc.
package sources

import (
	"context"

	"google.golang.org/api/iterator"

	"github.com/Konsultn-Engineering/bqlab/paging"
)

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 100

// OpenFunc returns a fresh, unstarted google API iterator.
type OpenFunc func(ctx context.Context) (iterator.Pageable, error)

// FromPageable adapts a google API listing into a FetchFunc. Every page is
// read from a new iterator positioned at the requested token, so no state
// is carried between fetches. Each page holds pageSize items unless the
// listing runs out.
func FromPageable[T any](open OpenFunc, pageSize int) paging.FetchFunc[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return func(ctx context.Context, pageToken string, _ int) ([]T, string, error) {
		it, err := open(ctx)
		if err != nil {
			return nil, "", err
		}
		var items []T
		next, err := iterator.NewPager(it, pageSize, pageToken).NextPage(&items)
		if err != nil {
			return nil, "", err
		}
		return items, next, nil
	}
}
