package gcs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/Konsultn-Engineering/bqlab/paging"
)

// fakeGCS serves the JSON listing endpoints from fixed pages keyed by
// request path and page token.
type fakeGCS struct {
	mu       sync.Mutex
	pages    map[string]map[string]any
	requests []*http.Request
}

func (f *fakeGCS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()

	body, ok := f.pages[r.URL.Path+"?"+r.URL.Query().Get("pageToken")]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"no such page"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T, f *fakeGCS) *storage.Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	client, err := storage.NewClient(context.Background(),
		option.WithEndpoint(srv.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestObjects(t *testing.T) {
	f := &fakeGCS{pages: map[string]map[string]any{
		"/storage/v1/b/logs/o?": {
			"items": []map[string]any{
				{"name": "2024/01/a.json", "bucket": "logs", "size": "10"},
				{"name": "2024/01/b.json", "bucket": "logs", "size": "20"},
			},
			"nextPageToken": "n1",
		},
		"/storage/v1/b/logs/o?n1": {
			"items":    []map[string]any{{"name": "2024/01/c.json", "bucket": "logs", "size": "30"}},
			"prefixes": []string{"2024/01/sub/"},
		},
	}}
	client := newTestClient(t, f)

	it := paging.New(Objects(client.Bucket("logs"), "2024/01/", "/", 2))
	objects, err := paging.Collect(context.Background(), it)
	require.NoError(t, err)

	var names []string
	var size int64
	for _, o := range objects {
		names = append(names, o.Name+o.Prefix)
		size += o.Size
	}
	assert.Equal(t, []string{"2024/01/a.json", "2024/01/b.json", "2024/01/c.json", "2024/01/sub/"}, names)
	assert.Equal(t, int64(60), size)

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.requests, 2)
	assert.Equal(t, "2024/01/", f.requests[0].URL.Query().Get("prefix"))
	assert.Equal(t, "/", f.requests[0].URL.Query().Get("delimiter"))
}

func TestBuckets(t *testing.T) {
	f := &fakeGCS{pages: map[string]map[string]any{
		"/storage/v1/b?": {
			"items": []map[string]any{{"name": "logs"}, {"name": "exports"}},
		},
	}}
	client := newTestClient(t, f)

	buckets, err := paging.Collect(context.Background(), paging.New(Buckets(client, "proj", 50)))
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, "logs", buckets[0].Name)
	assert.Equal(t, "exports", buckets[1].Name)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, "proj", f.requests[0].URL.Query().Get("project"))
}

func TestBucketsRequireProject(t *testing.T) {
	client := newTestClient(t, &fakeGCS{})
	_, _, err := Buckets(client, "", 10)(context.Background(), "", 0)
	assert.ErrorContains(t, err, "project is required")
}
