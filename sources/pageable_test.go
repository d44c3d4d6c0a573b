package sources

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/iterator"

	"github.com/Konsultn-Engineering/bqlab/paging"
)

type servicePage struct {
	items []string
	next  string
}

// fakeService is a listing endpoint with fixed pages keyed by token.
type fakeService struct {
	pages  map[string]servicePage
	err    error
	tokens []string
}

// open returns a Pageable over the service, as a client library would.
func (s *fakeService) open(context.Context) (iterator.Pageable, error) {
	if s.err != nil {
		return nil, s.err
	}
	it := &fakeIterator{svc: s}
	it.pageInfo, _ = iterator.NewPageInfo(it.fetch, func() int { return len(it.buf) }, func() interface{} {
		b := it.buf
		it.buf = nil
		return b
	})
	return it, nil
}

type fakeIterator struct {
	svc      *fakeService
	pageInfo *iterator.PageInfo
	buf      []string
}

func (it *fakeIterator) PageInfo() *iterator.PageInfo { return it.pageInfo }

func (it *fakeIterator) fetch(_ int, token string) (string, error) {
	it.svc.tokens = append(it.svc.tokens, token)
	p, ok := it.svc.pages[token]
	if !ok {
		return "", errors.New("invalid page token " + token)
	}
	it.buf = append(it.buf, p.items...)
	return p.next, nil
}

func TestFromPageable(t *testing.T) {
	svc := &fakeService{pages: map[string]servicePage{
		"":   {items: []string{"a", "b"}, next: "t1"},
		"t1": {items: []string{"c"}},
	}}

	items, err := paging.Collect(context.Background(), paging.New(FromPageable[string](svc.open, 10)))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, items)
	assert.Equal(t, []string{"", "t1"}, svc.tokens)
}

func TestFromPageableFillsPages(t *testing.T) {
	svc := &fakeService{pages: map[string]servicePage{
		"":   {items: []string{"a", "b"}, next: "t1"},
		"t1": {items: []string{"c", "d"}, next: "t2"},
		"t2": {items: []string{"e"}},
	}}
	fetch := FromPageable[string](svc.open, 3)

	items, next, err := fetch(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, items)
	assert.Equal(t, "t2", next)

	items, next, err = fetch(context.Background(), next, len(items))
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, items)
	assert.Empty(t, next)
}

func TestFromPageableErrors(t *testing.T) {
	boom := errors.New("credentials")
	_, _, err := FromPageable[string]((&fakeService{err: boom}).open, 0)(context.Background(), "", 0)
	assert.Same(t, boom, err)

	svc := &fakeService{pages: map[string]servicePage{}}
	_, _, err = FromPageable[string](svc.open, 0)(context.Background(), "stale", 0)
	assert.ErrorContains(t, err, "invalid page token stale")
}
